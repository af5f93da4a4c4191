// Package seed bulk-loads users and candidates from CSV through the
// registries, so every row passes the same invariants as an API call.
package seed

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"

	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// Registry is the subset of the registry service the loader drives.
type Registry interface {
	AddUser(ctx context.Context, user models.User) error
	AddCandidate(ctx context.Context, candidate models.Candidate) error
}

// UserRow is one line of the users file.
type UserRow struct {
	UserID           string `csv:"user_id"`
	FirstName        string `csv:"first_name"`
	PaternalLastName string `csv:"paternal_last_name"`
	MaternalLastName string `csv:"maternal_last_name"`
	Phone            string `csv:"phone"`
	Email            string `csv:"email"`
}

// CandidateRow is one line of the candidates file.
type CandidateRow struct {
	CandidateID string `csv:"candidate_id"`
	UserID      string `csv:"user_id"`
	RFC         string `csv:"rfc"`
}

// Outcome records what happened to a single row.
type Outcome struct {
	Collection string
	ID         string
	Result     string
	Detail     string
}

const (
	ResultAdded    = "added"
	ResultRejected = "rejected"
)

// Report lists row outcomes in input order.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) count(collection, result string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Collection == collection && o.Result == result {
			n++
		}
	}
	return n
}

// Loader feeds parsed rows into a Registry.
type Loader struct {
	registry Registry
}

func NewLoader(registry Registry) *Loader {
	return &Loader{registry: registry}
}

// Load reads users then candidates, so candidate rows may reference users
// from the same run. Either reader may be nil. Rejected rows are reported
// and skipped; an internal error stops the run.
func (l *Loader) Load(ctx context.Context, users, candidates io.Reader) (*Report, error) {
	report := &Report{}

	if users != nil {
		var rows []*UserRow
		if err := gocsv.Unmarshal(users, &rows); err != nil {
			return report, fmt.Errorf("parse users csv: %w", err)
		}
		for _, row := range rows {
			row.UserID = strings.TrimSpace(row.UserID)
			if err := models.ValidateID("user_id", row.UserID); err != nil {
				_ = report.record(storage.CollectionUsers, row.UserID, err)
				continue
			}
			err := l.registry.AddUser(ctx, models.User{
				ID:               row.UserID,
				FirstName:        row.FirstName,
				PaternalLastName: row.PaternalLastName,
				MaternalLastName: row.MaternalLastName,
				Phone:            row.Phone,
				Email:            row.Email,
			})
			if err := report.record(storage.CollectionUsers, row.UserID, err); err != nil {
				return report, err
			}
		}
	}

	if candidates != nil {
		var rows []*CandidateRow
		if err := gocsv.Unmarshal(candidates, &rows); err != nil {
			return report, fmt.Errorf("parse candidates csv: %w", err)
		}
		for _, row := range rows {
			row.CandidateID = strings.TrimSpace(row.CandidateID)
			row.UserID = strings.TrimSpace(row.UserID)
			if err := validateCandidateRow(row); err != nil {
				_ = report.record(storage.CollectionCandidates, row.CandidateID, err)
				continue
			}
			err := l.registry.AddCandidate(ctx, models.Candidate{
				ID:     row.CandidateID,
				UserID: row.UserID,
				RFC:    row.RFC,
			})
			if err := report.record(storage.CollectionCandidates, row.CandidateID, err); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// record appends the outcome and returns err only when it must stop the run.
func (r *Report) record(collection, id string, err error) error {
	switch {
	case err == nil:
		r.Outcomes = append(r.Outcomes, Outcome{Collection: collection, ID: id, Result: ResultAdded})
		return nil
	case dErrors.CodeOf(err) == dErrors.CodeInternal:
		return fmt.Errorf("seed %s %q: %w", collection, id, err)
	default:
		r.Outcomes = append(r.Outcomes, Outcome{
			Collection: collection,
			ID:         id,
			Result:     ResultRejected,
			Detail:     string(dErrors.CodeOf(err)),
		})
		return nil
	}
}

// Render writes the report as a table with per-collection totals.
func (r *Report) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Collection", "ID", "Result", "Detail"})
	table.SetAutoFormatHeaders(false)
	for _, o := range r.Outcomes {
		table.Append([]string{o.Collection, o.ID, o.Result, o.Detail})
	}
	table.Render()

	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"Collection", "Added", "Rejected"})
	totals.SetAutoFormatHeaders(false)
	for _, c := range []string{storage.CollectionUsers, storage.CollectionCandidates} {
		totals.Append([]string{
			c,
			strconv.Itoa(r.count(c, ResultAdded)),
			strconv.Itoa(r.count(c, ResultRejected)),
		})
	}
	totals.Render()
}

func validateCandidateRow(row *CandidateRow) error {
	if err := models.ValidateID("candidate_id", row.CandidateID); err != nil {
		return err
	}
	return models.ValidateID("user_id", row.UserID)
}
