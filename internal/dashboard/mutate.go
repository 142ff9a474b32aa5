package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/pantry/internal/api"
	"github.com/smileynet/pantry/internal/record"
	"github.com/smileynet/pantry/internal/table"
)

// errUnknownTable is reported for intents from a table the dashboard does
// not own.
var errUnknownTable = errors.New("unknown table")

// resource resolves the API endpoints behind an editor table.
func (m Model) resource(tableID string) (*api.Resource, error) {
	res, ok := m.api.Resource(record.Kind(tableID))
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownTable, tableID)
	}
	return res, nil
}

// create validates a drafted record and, when valid, adds it.
func (m Model) create(msg table.CreateMsg) (tea.Model, tea.Cmd) {
	res, err := m.resource(msg.Table)
	if err != nil {
		return m.setError(err.Error()), nil
	}
	r := applyDraft(record.Record{Kind: res.Kind}, msg.Draft)
	if err := record.Validate(r); err != nil {
		m.logger.Debug("rejected create", zap.String("kind", string(res.Kind)), zap.Error(err))
		return m.setError(err.Error()), nil
	}
	return m.run(res.Kind, res.Add.Endpoint, "Added "+r.Name, func(ctx context.Context) error {
		_, err := res.Add.Run(ctx, m.api.Cache, r)
		return err
	})
}

// update merges the draft into the current record and saves it.
func (m Model) update(msg table.UpdateMsg) (tea.Model, tea.Cmd) {
	res, err := m.resource(msg.Table)
	if err != nil {
		return m.setError(err.Error()), nil
	}
	current, ok := m.find(res.Kind, msg.Draft.RowID)
	if !ok {
		return m.setError(fmt.Sprintf("%s %q no longer exists", res.Kind.Title(), msg.Draft.RowID)), nil
	}
	r := applyDraft(current, msg.Draft)
	if err := record.Validate(r); err != nil {
		m.logger.Debug("rejected update", zap.String("kind", string(res.Kind)), zap.Error(err))
		return m.setError(err.Error()), nil
	}
	return m.run(res.Kind, res.Update.Endpoint, "Updated "+r.Name, func(ctx context.Context) error {
		_, err := res.Update.Run(ctx, m.api.Cache, r)
		return err
	})
}

func (m Model) delete(msg table.DeleteMsg) (tea.Model, tea.Cmd) {
	res, err := m.resource(msg.Table)
	if err != nil {
		return m.setError(err.Error()), nil
	}
	return m.run(res.Kind, res.Delete.Endpoint, "Deleted "+msg.Title, func(ctx context.Context) error {
		_, err := res.Delete.Run(ctx, m.api.Cache, msg.RowID)
		return err
	})
}

func (m Model) reset(msg table.ResetMsg) (tea.Model, tea.Cmd) {
	res, err := m.resource(msg.Table)
	if err != nil {
		return m.setError(err.Error()), nil
	}
	return m.run(res.Kind, res.Reset.Endpoint, "Reset "+res.Kind.Plural(), func(ctx context.Context) error {
		_, err := res.Reset.Run(ctx, m.api.Cache, api.Void{})
		return err
	})
}

// run starts a mutation in a command. The refetches it triggers reach the
// program through the bridge; the command itself reports completion.
func (m Model) run(kind record.Kind, endpoint, summary string, fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.pending++
	m.logger.Info("mutation", zap.String("endpoint", endpoint))
	ctx := m.ctx
	return m, func() tea.Msg {
		err := fn(ctx)
		return MutationDoneMsg{Kind: kind, Endpoint: endpoint, Summary: summary, Err: err}
	}
}

// find returns the displayed record of kind with the given ID.
func (m Model) find(kind record.Kind, id string) (record.Record, bool) {
	for _, r := range m.records[kind] {
		if r.ID == id {
			return r, true
		}
	}
	return record.Record{}, false
}
