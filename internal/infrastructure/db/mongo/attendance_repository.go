package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

const attendanceCollection = "attendance"

type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(attendanceCollection)}
}

type attendanceDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Type      string             `bson:"type"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (r *AttendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	userID, err := ref("user id", a.UserID)
	if err != nil {
		return err
	}
	doc := attendanceDoc{ID: primitive.NewObjectID(), UserID: userID, Type: string(a.Type), Timestamp: a.Timestamp.UTC()}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

// List returns matching records oldest first; ties keep insertion order.
func (r *AttendanceRepository) List(ctx context.Context, f ports.AttendanceFilter) ([]*domain.Attendance, error) {
	filter := bson.M{}
	if f.UserID != "" {
		oid, ok := parseID(f.UserID)
		if !ok {
			return []*domain.Attendance{}, nil
		}
		filter["user_id"] = oid
	}
	timeRange(filter, "timestamp", f.From, f.To)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findAll[attendanceDoc](ctx, r.col, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	out := make([]*domain.Attendance, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Attendance{
			ID:        d.ID.Hex(),
			UserID:    hexOrEmpty(d.UserID),
			Type:      domain.AttendanceType(d.Type),
			Timestamp: d.Timestamp.UTC(),
		})
	}
	return out, nil
}
