package catalog

import (
	"context"
	"fmt"
	"os"

	"findash/internal/logging"
	"findash/internal/models"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk shape of the category seed catalog:
// parent label -> sub label -> leaf category names.
type SeedFile struct {
	Categories map[string]map[string][]string `yaml:"categories"`
}

// LoadSeedFile reads and parses a YAML seed catalog. A missing file is not
// an error; it yields an empty seed.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SeedFile{}, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Seed creates every category from the seed that does not exist yet and
// returns the number created. Existing triples are left alone so seeding is
// idempotent.
func (c *Catalog) Seed(ctx context.Context, seed *SeedFile) (int, error) {
	created := 0
	for parent, subs := range seed.Categories {
		for sub, names := range subs {
			for _, name := range names {
				existing, err := c.store.FindCategory(ctx, name, parent, sub)
				if err != nil {
					return created, err
				}
				if existing != nil {
					continue
				}
				if _, err := c.Create(ctx, name, parent, sub); err != nil {
					return created, err
				}
				created++
			}
		}
	}

	c.log.Info("Category catalog seeded", logging.F("created", created))
	return created, nil
}

// AccountStore is the persistence surface account seeding needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	FindAccountByName(ctx context.Context, name string) (*models.Account, error)
}

// DefaultAccounts returns the accounts bootstrapped on first run.
func DefaultAccounts() []models.Account {
	return []models.Account{
		{Name: "BoursoBank", AccountType: "checking", IsActive: true},
		{Name: "Livret A", AccountType: "savings", IsActive: true},
		{Name: "PEA", AccountType: "investment", IsActive: true},
	}
}

// SeedAccounts creates the default accounts that do not exist yet and
// returns the number created.
func SeedAccounts(ctx context.Context, store AccountStore, logger logging.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	created := 0
	for _, a := range DefaultAccounts() {
		existing, err := store.FindAccountByName(ctx, a.Name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		account := a
		if err := store.CreateAccount(ctx, &account); err != nil {
			return created, err
		}
		created++
	}

	logger.Info("Accounts seeded", logging.F("created", created))
	return created, nil
}
