package source

import (
	"fmt"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
)

// Open builds the source described by cfg.
func Open(cfg projectconfig.SourceConfig) (ResultSource, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case projectconfig.SourceFile:
		return NewFileSource(cfg.Path), nil
	case projectconfig.SourceSQLite, projectconfig.SourceMySQL:
		return OpenSQL(cfg.Kind, cfg.DSN, cfg.View)
	case projectconfig.SourceBlob:
		return NewBlobSource(BlobOptions{
			AccountURL: cfg.AccountURL,
			Container:  cfg.Container,
			Blob:       cfg.Blob,
		})
	case projectconfig.SourceHTTP:
		return NewHTTPSource(cfg.URL, timeout), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}
