package scan_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/headlines/cmd/scan"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
)

type stubScanner struct {
	links  map[string][]models.Link
	all    *registry.AllResult
	getErr error
}

func (s stubScanner) Get(_ context.Context, name string) ([]models.Link, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.links[name], nil
}

func (s stubScanner) GetAll(context.Context) *registry.AllResult {
	return s.all
}

func TestRun_SingleSource(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	s := stubScanner{links: map[string][]models.Link{
		"bbc": {{URI: "https://www.bbc.co.uk/news/1", Title: "Climate summit", Source: "bbc"}},
	}}

	require.NoError(t, scan.Run(context.Background(), s, "bbc", &out, &errOut))
	assert.Contains(t, out.String(), "Climate summit")
	assert.Empty(t, errOut.String())
}

func TestRun_SingleSourceError(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	err := scan.Run(context.Background(), stubScanner{getErr: registry.ErrSourceNotFound}, "nope", &out, &errOut)
	require.ErrorIs(t, err, registry.ErrSourceNotFound)
}

func TestRun_AllSourcesReportsFailures(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	s := stubScanner{all: &registry.AllResult{
		Links:  []models.Link{{URI: "https://a/1", Title: "Climate A", Source: "a"}},
		Errors: []registry.SourceError{{Source: "b", Err: errors.New("timeout")}},
	}}

	err := scan.Run(context.Background(), s, "", &out, &errOut)
	require.ErrorIs(t, err, scan.ErrSourcesFailed)
	assert.Contains(t, out.String(), "Climate A")
	assert.Contains(t, errOut.String(), "b: timeout")
}
