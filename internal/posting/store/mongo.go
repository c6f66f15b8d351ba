package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"placement/internal/platform/mongodb"
	"placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
)

// Mongo stores postings in the jobs, tests and webinars collections.
// Uniqueness of an email within an applicant list is enforced by conditional
// updates, so a racing duplicate matches no document and surfaces as ErrConflict.
type Mongo struct {
	jobs     *mongo.Collection
	tests    *mongo.Collection
	webinars *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		jobs:     db.Collection(mongodb.CollectionJobs),
		tests:    db.Collection(mongodb.CollectionTests),
		webinars: db.Collection(mongodb.CollectionWebinars),
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

func (s *Mongo) collection(kind models.Kind) *mongo.Collection {
	switch kind {
	case models.KindJob:
		return s.jobs
	case models.KindTest:
		return s.tests
	default:
		return s.webinars
	}
}

// -----------------------------------------------------------------------------
// Generic helpers
// -----------------------------------------------------------------------------

func insertOne(ctx context.Context, coll *mongo.Collection, id *bson.ObjectID, doc any) error {
	if id.IsZero() {
		*id = bson.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id bson.ObjectID) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll.Name(), err)
	}
	var out []*T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func updateContent(ctx context.Context, coll *mongo.Collection, id bson.ObjectID, set bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id bson.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// missOrConflict resolves a conditional write that matched nothing: the
// document is either absent or already in the guarded state.
func missOrConflict(ctx context.Context, coll *mongo.Collection, id bson.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count %s: %w", coll.Name(), err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

// projectedCount is the decode target for applicant count projections.
type projectedCount struct {
	Count int `bson:"count"`
}

func afterUpdateCount(ctx context.Context, coll *mongo.Collection, filter, update bson.M) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"count": bson.M{"$size": "$studentsApplied"}})
	var out projectedCount
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

func (s *Mongo) CreateJob(ctx context.Context, job *models.Job) error {
	return insertOne(ctx, s.jobs, &job.ID, job)
}

func (s *Mongo) FindJob(ctx context.Context, id bson.ObjectID) (*models.Job, error) {
	return findOne[models.Job](ctx, s.jobs, id)
}

func (s *Mongo) ListJobs(ctx context.Context) ([]*models.Job, error) {
	return findMany[models.Job](ctx, s.jobs, bson.M{})
}

func (s *Mongo) FindJobsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Job, error) {
	return findMany[models.Job](ctx, s.jobs, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Mongo) UpdateJobContent(ctx context.Context, job *models.Job) error {
	return updateContent(ctx, s.jobs, job.ID, bson.M{
		"company":           job.Company,
		"role":              job.Role,
		"location":          job.Location,
		"description":       job.Description,
		"deadline":          job.Deadline,
		"postedAt":          job.PostedAt,
		"jobDescriptionPdf": job.JobDescriptionPdf,
		"pdfUrl":            job.PdfURL,
		"linkToApply":       job.LinkToApply,
		"eligibility":       job.Eligibility,
		"extraFields":       job.ExtraFields,
		"inputFields":       job.InputFields,
		"updatedAt":         job.UpdatedAt,
	})
}

func (s *Mongo) DeleteJob(ctx context.Context, id bson.ObjectID) error {
	return deleteOne(ctx, s.jobs, id)
}

func (s *Mongo) AddJobApplication(ctx context.Context, id bson.ObjectID, app models.Application) (int, error) {
	filter := bson.M{"_id": id, "studentsApplied.email": bson.M{"$ne": app.Email}}
	update := bson.M{
		"$push": bson.M{"studentsApplied": app},
		"$set":  bson.M{"updatedAt": app.AppliedAt},
	}
	n, err := afterUpdateCount(ctx, s.jobs, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, missOrConflict(ctx, s.jobs, id)
	}
	if err != nil {
		return 0, fmt.Errorf("append application: %w", err)
	}
	return n, nil
}

func (s *Mongo) RemoveJobApplication(ctx context.Context, id bson.ObjectID, email string) (int, error) {
	filter := bson.M{"_id": id, "studentsApplied.email": email}
	update := bson.M{"$pull": bson.M{"studentsApplied": bson.M{"email": email}}}
	n, err := afterUpdateCount(ctx, s.jobs, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("pull application: %w", err)
	}
	return n, nil
}

func (s *Mongo) AddJobNotInterested(ctx context.Context, id bson.ObjectID, email string) error {
	res, err := s.jobs.UpdateOne(ctx,
		bson.M{"_id": id, "studentsNotInterested": bson.M{"$ne": email}},
		bson.M{"$push": bson.M{"studentsNotInterested": email}},
	)
	if err != nil {
		return fmt.Errorf("append not interested: %w", err)
	}
	if res.MatchedCount == 0 {
		return missOrConflict(ctx, s.jobs, id)
	}
	return nil
}

func (s *Mongo) SetJobApplicationStatus(ctx context.Context, id bson.ObjectID, email string, status models.ApplicationStatus, at time.Time) error {
	res, err := s.jobs.UpdateOne(ctx,
		bson.M{"_id": id, "studentsApplied.email": email},
		bson.M{"$set": bson.M{
			"studentsApplied.$.status":    status,
			"studentsApplied.$.updatedAt": at,
			"updatedAt":                   at,
		}},
	)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func (s *Mongo) CreateTest(ctx context.Context, t *models.Test) error {
	return insertOne(ctx, s.tests, &t.ID, t)
}

func (s *Mongo) FindTest(ctx context.Context, id bson.ObjectID) (*models.Test, error) {
	return findOne[models.Test](ctx, s.tests, id)
}

func (s *Mongo) ListTests(ctx context.Context) ([]*models.Test, error) {
	return findMany[models.Test](ctx, s.tests, bson.M{})
}

func (s *Mongo) FindTestsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Test, error) {
	return findMany[models.Test](ctx, s.tests, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Mongo) UpdateTestContent(ctx context.Context, t *models.Test) error {
	return updateContent(ctx, s.tests, t.ID, bson.M{
		"title":       t.Title,
		"description": t.Description,
		"date":        t.Date,
		"deadline":    t.Deadline,
		"duration":    t.Duration,
		"mode":        t.Mode,
		"link":        t.Link,
		"pdfUrl":      t.PdfURL,
		"extraFields": t.ExtraFields,
		"updatedAt":   t.UpdatedAt,
	})
}

func (s *Mongo) DeleteTest(ctx context.Context, id bson.ObjectID) error {
	return deleteOne(ctx, s.tests, id)
}

// -----------------------------------------------------------------------------
// Webinars
// -----------------------------------------------------------------------------

func (s *Mongo) CreateWebinar(ctx context.Context, w *models.Webinar) error {
	return insertOne(ctx, s.webinars, &w.ID, w)
}

func (s *Mongo) FindWebinar(ctx context.Context, id bson.ObjectID) (*models.Webinar, error) {
	return findOne[models.Webinar](ctx, s.webinars, id)
}

func (s *Mongo) ListWebinars(ctx context.Context) ([]*models.Webinar, error) {
	return findMany[models.Webinar](ctx, s.webinars, bson.M{})
}

func (s *Mongo) FindWebinarsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Webinar, error) {
	return findMany[models.Webinar](ctx, s.webinars, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Mongo) UpdateWebinarContent(ctx context.Context, w *models.Webinar) error {
	return updateContent(ctx, s.webinars, w.ID, bson.M{
		"title":       w.Title,
		"description": w.Description,
		"date":        w.Date,
		"time":        w.Time,
		"duration":    w.Duration,
		"mode":        w.Mode,
		"link":        w.Link,
		"updatedAt":   w.UpdatedAt,
	})
}

func (s *Mongo) DeleteWebinar(ctx context.Context, id bson.ObjectID) error {
	return deleteOne(ctx, s.webinars, id)
}

// -----------------------------------------------------------------------------
// Test/webinar registrants
// -----------------------------------------------------------------------------

func (s *Mongo) AddRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error) {
	coll := s.collection(kind)
	filter := bson.M{"_id": id, "studentsApplied": bson.M{"$ne": email}}
	update := bson.M{"$push": bson.M{"studentsApplied": email}}
	n, err := afterUpdateCount(ctx, coll, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, missOrConflict(ctx, coll, id)
	}
	if err != nil {
		return 0, fmt.Errorf("append registrant: %w", err)
	}
	return n, nil
}

func (s *Mongo) RemoveRegistrant(ctx context.Context, kind models.Kind, id bson.ObjectID, email string) (int, error) {
	coll := s.collection(kind)
	filter := bson.M{"_id": id, "studentsApplied": email}
	update := bson.M{"$pull": bson.M{"studentsApplied": email}}
	n, err := afterUpdateCount(ctx, coll, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("pull registrant: %w", err)
	}
	return n, nil
}
