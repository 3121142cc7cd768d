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

const clientsCollection = "clients"

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(clientsCollection)}
}

type documentDoc struct {
	URL        string    `bson:"url"`
	Name       string    `bson:"name"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

type clientDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	Email     string               `bson:"email"`
	Phone     string               `bson:"phone"`
	Documents []documentDoc        `bson:"documents"`
	Cases     []primitive.ObjectID `bson:"cases"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (d clientDoc) toDomain() *domain.Client {
	c := &domain.Client{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Documents: make([]domain.Document, 0, len(d.Documents)),
		CaseIDs:   make([]string, 0, len(d.Cases)),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	for _, doc := range d.Documents {
		c.Documents = append(c.Documents, domain.Document{URL: doc.URL, Name: doc.Name, UploadedAt: doc.UploadedAt.UTC()})
	}
	for _, id := range d.Cases {
		c.CaseIDs = append(c.CaseIDs, id.Hex())
	}
	return c
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := clientDoc{
		ID:        primitive.NewObjectID(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Documents: []documentDoc{},
		Cases:     parseIDs(c.CaseIDs),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	for _, d := range c.Documents {
		doc.Documents = append(doc.Documents, documentDoc{URL: d.URL, Name: d.Name, UploadedAt: d.UploadedAt.UTC()})
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert client: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *ClientRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Client, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *ClientRepository) List(ctx context.Context, f ports.ClientFilter) ([]*domain.Client, error) {
	filter := bson.M{}
	timeRange(filter, "created_at", f.CreatedFrom, f.CreatedTo)
	return r.find(ctx, filter)
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

// AppendDocument pushes doc onto the client's document list in one atomic update.
func (r *ClientRepository) AppendDocument(ctx context.Context, id string, doc domain.Document) (*domain.Client, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"documents": documentDoc{URL: doc.URL, Name: doc.Name, UploadedAt: doc.UploadedAt.UTC()}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// AddCase adds caseID to the client's case set with $addToSet, so concurrent
// and repeated calls never lose or duplicate a reference.
func (r *ClientRepository) AddCase(ctx context.Context, clientID, caseID string) error {
	oid, ok := parseID(clientID)
	if !ok {
		return domain.ErrClientNotFound
	}
	caseOID, err := ref("case id", caseID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$addToSet": bson.M{"cases": caseOID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add case to client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Client, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter).Decode(&doc)
	switch {
	case isNoDocuments(err):
		return nil, domain.ErrClientNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("update client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) find(ctx context.Context, filter bson.M) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, err := findAll[clientDoc](ctx, r.col, filter, byInsertion)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	out := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
