package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text string
	err  error
	reqs []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.text, f.err
}

func TestFetchReturnsGeneratedText(t *testing.T) {
	gen := &fakeGenerator{text: "SITREP: all nodes nominal"}
	b := Fetch(context.Background(), gen, PanelAnalysis, PromptArgs{Hours: 24})

	assert.Equal(t, PanelAnalysis, b.Panel)
	assert.Equal(t, "SITREP: all nodes nominal", b.Text)
	assert.False(t, b.Fallback)
	assert.False(t, b.GeneratedAt.IsZero())

	require.Len(t, gen.reqs, 1)
	req := gen.reqs[0]
	assert.Contains(t, req.Prompt, "T+24 hours")
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-6)
	require.NotNil(t, req.TopP)
	assert.InDelta(t, 0.95, *req.TopP, 1e-6)
}

func TestFetchFailureResolvesToFallback(t *testing.T) {
	for _, p := range Panels() {
		t.Run(string(p), func(t *testing.T) {
			gen := &fakeGenerator{err: errors.New("dial tcp: i/o timeout")}
			b := Fetch(context.Background(), gen, p, PromptArgs{Mission: "OP", Objectives: []string{"x"}})
			assert.True(t, b.Fallback)
			assert.Equal(t, p.Fallback(), b.Text)
			assert.NotEmpty(t, b.Text)
		})
	}
}

func TestFetchWithoutGenerator(t *testing.T) {
	b := Fetch(context.Background(), nil, PanelIntel, PromptArgs{})
	assert.True(t, b.Fallback)
	assert.Equal(t, "INTEL FEED OFFLINE. LOCAL ENCRYPTION ACTIVE.", b.Text)

	var disabled *Client
	b = Fetch(context.Background(), disabled, PanelHealth, PromptArgs{})
	assert.True(t, b.Fallback)
	assert.Equal(t, "PROGNOSIS UNAVAILABLE: DATA FEED DISRUPTED.", b.Text)
}

func TestFetchUnknownPanel(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	b := Fetch(context.Background(), gen, Panel("weather"), PromptArgs{})
	assert.True(t, b.Fallback)
	assert.Empty(t, gen.reqs)
}

func TestBuildRequestMission(t *testing.T) {
	req, err := BuildRequest(PanelMission, PromptArgs{
		Mission:    "OPERATION AZURE SHIELD",
		Objectives: []string{"Secure Sector 4 maritime lanes", "Neutralize aerial corridor threats"},
	})
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, `"OPERATION AZURE SHIELD"`)
	assert.Contains(t, req.Prompt, "Objectives: Secure Sector 4 maritime lanes, Neutralize aerial corridor threats.")
	assert.Nil(t, req.TopP)
	assert.InDelta(t, 0.75, *req.Temperature, 1e-6)
}

func TestParsePanel(t *testing.T) {
	p, err := ParsePanel(" Supply-Risk ")
	require.NoError(t, err)
	assert.Equal(t, PanelSupplyRisk, p)

	_, err = ParsePanel("weather")
	assert.Error(t, err)
}
