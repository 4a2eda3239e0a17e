package tui

import (
	"github.com/hyperifyio/devsearch/internal/app"
	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/priority"
)

// searchResultMsg carries a finished search. seq identifies the submit that
// started it so superseded results can be dropped.
type searchResultMsg struct {
	seq int
	set app.ResultSet
	err error
}

// openPageMsg asks the model to open a page view for a result.
type openPageMsg struct {
	result priority.Ranked
}

// pageLoadedMsg carries a rendered page for view id.
type pageLoadedMsg struct {
	id   int
	page browser.Page
	err  error
}

// summaryMsg carries a page summary for view id.
type summaryMsg struct {
	id   int
	text string
	err  error
}

// externalOpenedMsg reports the outcome of handing a URL to the system browser.
type externalOpenedMsg struct {
	url string
	err error
}

// copiedMsg reports the outcome of copying a URL to the clipboard.
type copiedMsg struct {
	url string
	err error
}
