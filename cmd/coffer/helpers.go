package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/model"
	"github.com/coffertool/coffer/internal/session"
	"github.com/coffertool/coffer/internal/storage"
)

func newAPIClient() *api.Client {
	return api.NewClient(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout))
}

func sessionStore() (*session.Store, error) {
	return session.NewStore(cfg.DataDir)
}

// requireSession resumes the stored session, installs its token on a
// fresh API client, and returns both. A dead or missing token is fatal
// for the command: the user must log in again.
func requireSession(ctx context.Context) (*api.Client, *session.Session, error) {
	store, err := sessionStore()
	if err != nil {
		return nil, nil, err
	}

	state, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	client := newAPIClient()
	if state != nil {
		client.SetToken(state.Token)
	}

	sess, err := session.Resume(ctx, store, client)
	if err != nil {
		return nil, nil, fmt.Errorf("no valid session (run 'coffer login'): %w", err)
	}
	client.SetToken(sess.Token())
	return client, sess, nil
}

// openSnapshot opens the local cache database, migrating as needed.
func openSnapshot(ctx context.Context) (*storage.SnapshotStore, error) {
	dir := cfg.DataDir
	if dir == "" {
		var err error
		dir, err = session.DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	store, err := storage.NewSnapshotStore(filepath.Join(dir, "snapshot.db"))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// formatMoney renders an amount with thousands separators, matching
// how the web views display budgets.
func formatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := fmt.Sprintf("%.0f", amount)
	var out []byte
	for i, d := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return sign + "$" + string(out)
}

// approvedDisplay renders a proposal's approved amount, with a dash
// while no decision amount exists.
func approvedDisplay(p model.Proposal) string {
	if p.ApprovedAmount == nil {
		return "-"
	}
	return formatMoney(*p.ApprovedAmount)
}
