// Package fixtures serves the built-in HCP networks shown on the dashboard.
package fixtures

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/TFMV/kolgraph/ingest"
	"github.com/TFMV/kolgraph/models"
)

// ErrUnknownFixture is returned by Load for names not in Names()
var ErrUnknownFixture = errors.New("unknown fixture")

//go:embed data/*.yaml
var files embed.FS

var (
	loadOnce sync.Once
	networks map[string]*models.Network
	loadErr  error
)

func parseAll() {
	entries, err := files.ReadDir("data")
	if err != nil {
		loadErr = err
		return
	}

	networks = make(map[string]*models.Network, len(entries))
	processor := ingest.NewYAMLProcessor()
	for _, entry := range entries {
		data, err := files.ReadFile(path.Join("data", entry.Name()))
		if err != nil {
			loadErr = err
			return
		}
		network, err := processor.ProcessData(data)
		if err != nil {
			loadErr = fmt.Errorf("fixture %s: %w", entry.Name(), err)
			return
		}
		networks[strings.TrimSuffix(entry.Name(), ".yaml")] = network
	}
}

// Names lists the available fixtures in sorted order
func Names() []string {
	loadOnce.Do(parseAll)
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns a private copy of the named fixture
func Load(name string) (*models.Network, error) {
	loadOnce.Do(parseAll)
	if loadErr != nil {
		return nil, loadErr
	}
	network, ok := networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFixture, name)
	}
	return network.Clone(), nil
}

// Source exposes the fixtures as a models.NetworkSource
type Source struct{}

var _ models.NetworkSource = Source{}

// Load returns the named fixture
func (Source) Load(name string) (*models.Network, error) { return Load(name) }

// Names lists fixture names
func (Source) Names() []string { return Names() }
