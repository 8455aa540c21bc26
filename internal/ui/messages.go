package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"peoplesearch/internal/domain"
	"peoplesearch/internal/observable"
)

// queryMsg carries a new query value from the store
type queryMsg string

// resultsMsg carries a newly published result list
type resultsMsg []domain.Person

// busyMsg carries a busy flag change
type busyMsg bool

// storeClosedMsg signals that the store was torn down
type storeClosedMsg struct{}

// pagerClosedMsg is sent when the results pager exits
type pagerClosedMsg struct {
	err error
}

// listen waits for the next value on sub and wraps it as a message.
// Update re-issues it after every value so delivery continues on the UI loop.
func listen[T any](sub *observable.Subscription[T], wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return storeClosedMsg{}
		}
		return wrap(v)
	}
}

func wrapQuery(q string) tea.Msg { return queryMsg(q) }

func wrapResults(r []domain.Person) tea.Msg { return resultsMsg(r) }

func wrapBusy(b bool) tea.Msg { return busyMsg(b) }
