package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// DirectoryPerson is one [[person]] entry of the directory file
type DirectoryPerson struct {
	ID    int64  `toml:"id"`
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// DirectoryContext is one [[context]] entry of the directory file
type DirectoryContext struct {
	ID   int64  `toml:"id"`
	Name string `toml:"name"`
}

// DirectoryFile is the TOML layout of the directory seed file
type DirectoryFile struct {
	People   []DirectoryPerson  `toml:"person"`
	Contexts []DirectoryContext `toml:"context"`
}

// Validate checks ids and names of every entry
func (f *DirectoryFile) Validate() error {
	var errs []error

	seenPeople := make(map[int64]bool)
	for _, p := range f.People {
		if p.ID <= 0 {
			errs = append(errs, goerr.Wrap(ErrInvalidConfig, "person id must be positive",
				goerr.V(EntryKindKey, "person"), goerr.V(EntryIDKey, p.ID)))
			continue
		}
		if seenPeople[p.ID] {
			errs = append(errs, goerr.Wrap(ErrDuplicateID, "duplicate person id",
				goerr.V(EntryKindKey, "person"), goerr.V(EntryIDKey, p.ID)))
		}
		seenPeople[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, goerr.Wrap(ErrMissingName, "person name is required",
				goerr.V(EntryKindKey, "person"), goerr.V(EntryIDKey, p.ID)))
		}
	}

	seenContexts := make(map[int64]bool)
	for _, c := range f.Contexts {
		if c.ID <= 0 {
			errs = append(errs, goerr.Wrap(ErrInvalidConfig, "context id must be positive",
				goerr.V(EntryKindKey, "context"), goerr.V(EntryIDKey, c.ID)))
			continue
		}
		if seenContexts[c.ID] {
			errs = append(errs, goerr.Wrap(ErrDuplicateID, "duplicate context id",
				goerr.V(EntryKindKey, "context"), goerr.V(EntryIDKey, c.ID)))
		}
		seenContexts[c.ID] = true
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, goerr.Wrap(ErrMissingName, "context name is required",
				goerr.V(EntryKindKey, "context"), goerr.V(EntryIDKey, c.ID)))
		}
	}

	return errors.Join(errs...)
}

// ParseDirectory decodes and validates a directory file
func ParseDirectory(data []byte) (*DirectoryFile, error) {
	var f DirectoryFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse directory file")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Directory holds CLI flags for the people/context directory seed
type Directory struct {
	path            string
	refreshInterval time.Duration
}

func (x *Directory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "directory",
			Usage:       "Path to TOML file listing people and contexts",
			Category:    "Directory",
			Sources:     cli.EnvVars("GRC_RISK_DIRECTORY"),
			Destination: &x.path,
		},
		&cli.DurationFlag{
			Name:        "directory-refresh-interval",
			Usage:       "Interval for reloading the directory file (0 disables reloading)",
			Category:    "Directory",
			Sources:     cli.EnvVars("GRC_RISK_DIRECTORY_REFRESH_INTERVAL"),
			Destination: &x.refreshInterval,
		},
	}
}

func (x Directory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.String("refresh_interval", x.refreshInterval.String()),
	)
}

// IsEnabled reports whether a directory file is configured
func (x *Directory) IsEnabled() bool {
	return x.path != ""
}

// RefreshInterval returns the configured reload interval
func (x *Directory) RefreshInterval() time.Duration {
	return x.refreshInterval
}

// Load reads the directory file and converts it to model entities
func (x *Directory) Load(ctx context.Context) ([]*model.Person, []*model.Context, error) {
	data, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, goerr.Wrap(ErrConfigNotFound, "directory file not found", goerr.V(ConfigPathKey, x.path))
		}
		return nil, nil, goerr.Wrap(err, "failed to read directory file", goerr.V(ConfigPathKey, x.path))
	}

	f, err := ParseDirectory(data)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "invalid directory file", goerr.V(ConfigPathKey, x.path))
	}

	people := make([]*model.Person, 0, len(f.People))
	for _, p := range f.People {
		people = append(people, &model.Person{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	contexts := make([]*model.Context, 0, len(f.Contexts))
	for _, c := range f.Contexts {
		contexts = append(contexts, &model.Context{ID: c.ID, Name: c.Name})
	}
	return people, contexts, nil
}
