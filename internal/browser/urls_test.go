package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chromedp/cdproto/target"
)

func TestNewWindowTagIsOpaqueAndUnique(t *testing.T) {
	t.Parallel()

	a, b := newWindowTag(), newWindowTag()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}

func TestTaggedInitializationURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://app.narada.ai/initialize?t=abc123",
		taggedInitializationURL("https://app.narada.ai/initialize", "abc123"))

	assert.Equal(t,
		"https://app.narada.ai/initialize?env=staging&t=abc123",
		taggedInitializationURL("https://app.narada.ai/initialize?env=staging", "abc123"))
}

func TestSidePanelURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"chrome-extension://hbkagjmdmkjeicjinkhfafcpocbckgmc/sidepanel.html?browserWindowId=win-7",
		sidePanelURL("hbkagjmdmkjeicjinkhfafcpocbckgmc", "win-7"))
}

func TestFindTargetByURLIgnoresDecoys(t *testing.T) {
	t.Parallel()

	tagged := taggedInitializationURL("https://app.narada.ai/initialize", "abc123")
	targets := []*target.Info{
		{TargetID: "t1", URL: "https://app.narada.ai/initialize"},
		{TargetID: "t2", URL: "https://app.narada.ai/initialize?t=xyz789"},
		{TargetID: "t3", URL: tagged},
		{TargetID: "t4", URL: "about:blank"},
	}

	found := findTargetByURL(targets, tagged)
	assert.NotNil(t, found)
	assert.Equal(t, target.ID("t3"), found.TargetID)

	assert.Nil(t, findTargetByURL(targets, "https://app.narada.ai/initialize?t=missing"))
}
