package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

const casesCollection = "cases"

type CaseRepository struct {
	col *mongo.Collection
}

func NewCaseRepository(db *mongo.Database) *CaseRepository {
	return &CaseRepository{col: db.Collection(casesCollection)}
}

type caseUpdateDoc struct {
	Content   string             `bson:"content"`
	Author    primitive.ObjectID `bson:"author"`
	Timestamp time.Time          `bson:"timestamp"`
}

type caseDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ClientID    primitive.ObjectID `bson:"client_id"`
	AssociateID primitive.ObjectID `bson:"associate_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Updates     []caseUpdateDoc    `bson:"updates"`
	LinkState   string             `bson:"link_state"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	ClosedAt    *time.Time         `bson:"closed_at,omitempty"`
}

func (d caseDoc) toDomain() *domain.Case {
	c := &domain.Case{
		ID:          d.ID.Hex(),
		ClientID:    hexOrEmpty(d.ClientID),
		AssociateID: hexOrEmpty(d.AssociateID),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.CaseStatus(d.Status),
		Updates:     make([]domain.CaseUpdate, 0, len(d.Updates)),
		LinkState:   domain.LinkState(d.LinkState),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		ClosedAt:    utcPtr(d.ClosedAt),
	}
	// Records written before link tracking existed count as linked.
	if c.LinkState == "" {
		c.LinkState = domain.LinkLinked
	}
	for _, u := range d.Updates {
		c.Updates = append(c.Updates, domain.CaseUpdate{Content: u.Content, AuthorID: hexOrEmpty(u.Author), Timestamp: u.Timestamp.UTC()})
	}
	return c
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	clientID, err := ref("client id", c.ClientID)
	if err != nil {
		return err
	}
	associateID, err := ref("associate id", c.AssociateID)
	if err != nil {
		return err
	}

	doc := caseDoc{
		ID:          primitive.NewObjectID(),
		ClientID:    clientID,
		AssociateID: associateID,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		Updates:     []caseUpdateDoc{},
		LinkState:   string(c.LinkState),
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
		ClosedAt:    utcPtr(c.ClosedAt),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *CaseRepository) FindByID(ctx context.Context, id string) (*domain.Case, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc caseDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CaseRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Case, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *CaseRepository) List(ctx context.Context, f ports.CaseFilter) ([]*domain.Case, error) {
	filter := caseFilter(f)
	if filter == nil {
		return []*domain.Case{}, nil
	}
	return r.find(ctx, filter)
}

// Update applies the patch. When the status changes closed_at is replaced
// with patch.ClosedAt, or removed when that is nil.
func (r *CaseRepository) Update(ctx context.Context, id string, patch ports.CasePatch) (*domain.Case, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
		if patch.ClosedAt != nil {
			set["closed_at"] = patch.ClosedAt.UTC()
		} else {
			update["$unset"] = bson.M{"closed_at": ""}
		}
	}
	return r.findAndUpdate(ctx, id, update)
}

// AppendUpdate pushes a progress note in one atomic update.
func (r *CaseRepository) AppendUpdate(ctx context.Context, id string, u domain.CaseUpdate) (*domain.Case, error) {
	author, err := ref("author id", u.AuthorID)
	if err != nil {
		return nil, err
	}
	return r.findAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"updates": caseUpdateDoc{Content: u.Content, Author: author, Timestamp: u.Timestamp.UTC()}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *CaseRepository) MarkLinked(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"link_state": string(domain.LinkLinked)}})
	if err != nil {
		return fmt.Errorf("mark case linked: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) FindPendingLinks(ctx context.Context, createdBefore time.Time) ([]*domain.Case, error) {
	return r.find(ctx, bson.M{
		"link_state": string(domain.LinkPending),
		"created_at": bson.M{"$lt": createdBefore.UTC()},
	})
}

func (r *CaseRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Case, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc caseDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("update case: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CaseRepository) find(ctx context.Context, filter bson.M) ([]*domain.Case, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, err := findAll[caseDoc](ctx, r.col, filter, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}
	out := make([]*domain.Case, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// caseFilter builds the query for f. It returns nil when a reference filter
// is malformed and so cannot match anything.
func caseFilter(f ports.CaseFilter) bson.M {
	filter := bson.M{}
	if f.ClientID != "" {
		oid, ok := parseID(f.ClientID)
		if !ok {
			return nil
		}
		filter["client_id"] = oid
	}
	if f.AssociateID != "" {
		oid, ok := parseID(f.AssociateID)
		if !ok {
			return nil
		}
		filter["associate_id"] = oid
	}
	timeRange(filter, "created_at", f.CreatedFrom, f.CreatedTo)
	return filter
}
