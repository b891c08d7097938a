package ontoshop

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	ld "github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
	"github.com/underlay/ontoshop/rows"
	"github.com/underlay/ontoshop/types"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is the record projected from a Feedback subject
type Feedback struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Email       string    `json:"email"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewFeedback holds the fields of a feedback entry to submit
type NewFeedback struct {
	User    string
	Email   string
	Rating  int
	Comment string
}

// Feedbacks is the repository of Feedback entities. Every entry is written
// both to the graph and to an auxiliary row store under the same id. The
// graph is the source of truth for reads.
type Feedbacks struct {
	store   *Store
	rows    rows.Store
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewFeedbacks returns the feedback repository over store, mirroring rows into rowStore
func NewFeedbacks(store *Store, rowStore rows.Store, logger *zap.Logger, metrics *Metrics) *Feedbacks {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Feedbacks{store: store, rows: rowStore, logger: logger, metrics: metrics, now: time.Now}
}

// Rows exposes the auxiliary row store
func (r *Feedbacks) Rows() rows.Store { return r.rows }

func projectFeedback(g *graph.Graph, s ld.Node) (f Feedback, err error) {
	if f.ID, err = localID(s); err != nil {
		return
	}
	if f.User, err = readString(g, s, types.FeedbackUser); err != nil {
		return
	}
	if f.Email, err = readString(g, s, types.UserEmail); err != nil {
		return
	}
	if f.Rating, err = readInt(g, s, types.Rating); err != nil {
		return
	}
	if f.Comment, err = stringOr(g, s, types.Comment, ""); err != nil {
		return
	}
	f.SubmittedAt, err = timeOr(g, s, types.SubmissionDate)
	return
}

// List returns every well-formed feedback entry, ordered by id
func (r *Feedbacks) List() (entries []Feedback, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		entries = collect("feedback", subjectsOf(g, types.Feedback), func(s ld.Node) (Feedback, error) {
			return projectFeedback(g, s)
		}, r.logger, r.metrics)
		return nil
	})
	return
}

// Get returns the feedback entry with the given id
func (r *Feedbacks) Get(id string) (entry *Feedback, err error) {
	err = r.store.View(func(g *graph.Graph) error {
		s := types.Subject(id)
		if id == "" || !isA(g, s, types.Feedback) {
			return notFound("feedback", id)
		}
		f, err := projectFeedback(g, s)
		if err != nil {
			return err
		}
		entry = &f
		return nil
	})
	return
}

func validateFeedback(input NewFeedback) error {
	if strings.TrimSpace(input.User) == "" {
		return invalid("user", "must not be empty")
	} else if !strings.Contains(input.Email, "@") {
		return invalid("email", "must be an email address")
	} else if input.Rating < MinRating || input.Rating > MaxRating {
		return invalid("rating", "must be between 1 and 5")
	}
	return nil
}

// Create writes the row first and then the triples. If the triples cannot
// be persisted the row is deleted again.
func (r *Feedbacks) Create(input NewFeedback) (*Feedback, error) {
	if err := validateFeedback(input); err != nil {
		return nil, err
	}

	f := Feedback{
		ID:          uuid.New().String(),
		User:        input.User,
		Email:       input.Email,
		Rating:      input.Rating,
		Comment:     input.Comment,
		SubmittedAt: r.now().UTC(),
	}

	row := &rows.Row{
		ID:          f.ID,
		User:        f.User,
		Email:       f.Email,
		Rating:      f.Rating,
		Comment:     f.Comment,
		SubmittedAt: f.SubmittedAt,
	}
	if err := r.rows.Put(row); err != nil {
		return nil, err
	}

	err := r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(f.ID)
		g.Add(s, rdfType, types.IRI(types.Feedback))
		set(g, s, types.FeedbackUser, types.String(f.User))
		set(g, s, types.UserEmail, types.String(f.Email))
		set(g, s, types.Rating, types.Integer(f.Rating))
		set(g, s, types.Comment, types.String(f.Comment))
		set(g, s, types.SubmissionDate, types.DateTime(f.SubmittedAt))
		return nil
	})
	if err != nil {
		if rollback := r.rows.Delete(f.ID); rollback != nil {
			r.logger.Error("Failed to roll back feedback row", zap.String("id", f.ID), zap.Error(rollback))
		}
		return nil, err
	}

	r.logger.Info("Created feedback", zap.String("id", f.ID))
	return &f, nil
}

// Delete removes the triples and then the row. Either half being already
// absent is logged; the call fails with ErrNotFound only when both are. A row
// that cannot be deleted is logged and does not fail the call.
func (r *Feedbacks) Delete(id string) error {
	if id == "" {
		return notFound("feedback", id)
	}

	var missing bool
	err := r.store.Update(func(g *graph.Graph) error {
		s := types.Subject(id)
		if !isA(g, s, types.Feedback) {
			missing = true
			return notFound("feedback", id)
		}
		g.RemoveSubject(s)
		return nil
	})

	rowErr := r.rows.Delete(id)
	switch {
	case missing && errors.Is(rowErr, rows.ErrNotFound):
		return err
	case missing && rowErr == nil:
		r.logger.Info("Feedback triples already absent", zap.String("id", id))
		return nil
	case errors.Is(rowErr, rows.ErrNotFound):
		r.logger.Info("Feedback row already absent", zap.String("id", id))
	case rowErr != nil:
		r.logger.Warn("Failed to delete feedback row", zap.String("id", id), zap.Error(rowErr))
	}
	return err
}
