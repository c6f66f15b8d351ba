package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"placement/internal/platform/mongodb"
	"placement/internal/profile/models"
	posting "placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
)

// Mongo stores profiles in the profiles collection, unique on collegeEmail.
type Mongo struct {
	profiles *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{profiles: db.Collection(mongodb.CollectionProfiles)}
}

func listField(kind posting.Kind) string {
	switch kind {
	case posting.KindJob:
		return "jobs"
	case posting.KindTest:
		return "tests"
	default:
		return "webinars"
	}
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.profiles.FindOne(ctx, bson.M{"collegeEmail": email}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (s *Mongo) FindByEmails(ctx context.Context, emails []string) ([]*models.Profile, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"collegeEmail": bson.M{"$in": emails}},
		bson.M{"personalEmail": bson.M{"$in": emails}},
	}}
	cur, err := s.profiles.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "collegeEmail", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	var out []*models.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return out, nil
}

func (s *Mongo) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	update := bson.M{
		"$set": bson.M{
			"name":              p.Name,
			"personalEmail":     p.PersonalEmail,
			"enrollmentNumber":  p.EnrollmentNumber,
			"department":        p.Department,
			"batchStart":        p.BatchStart,
			"batchEnd":          p.BatchEnd,
			"phone":             p.Phone,
			"tenthPercentage":   p.TenthPercentage,
			"twelfthPercentage": p.TwelfthPercentage,
			"collegeGPA":        p.CollegeGPA,
			"linkedin":          p.Linkedin,
			"github":            p.Github,
			"leetcode":          p.Leetcode,
			"resume":            p.Resume,
			"status":            p.Status,
			"updatedAt":         p.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": p.CreatedAt,
			"jobs":      bson.A{},
			"tests":     bson.A{},
			"webinars":  bson.A{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.Profile
	err := s.profiles.FindOneAndUpdate(ctx, bson.M{"collegeEmail": p.CollegeEmail}, update, opts).Decode(&saved)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &saved, nil
}

func (s *Mongo) AddMembership(ctx context.Context, email string, kind posting.Kind, m models.Membership) error {
	field, key := listField(kind), models.IDField(kind)
	res, err := s.profiles.UpdateOne(ctx,
		bson.M{"collegeEmail": email, field + "." + key: bson.M{"$ne": m.PostingID()}},
		bson.M{"$push": bson.M{field: m}},
	)
	if err != nil {
		return fmt.Errorf("append membership: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.profiles.CountDocuments(ctx, bson.M{"collegeEmail": email})
	if err != nil {
		return fmt.Errorf("count profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *Mongo) RemoveMembership(ctx context.Context, email string, kind posting.Kind, id bson.ObjectID) error {
	field, key := listField(kind), models.IDField(kind)
	res, err := s.profiles.UpdateOne(ctx,
		bson.M{"collegeEmail": email, field + "." + key: id},
		bson.M{"$pull": bson.M{field: bson.M{key: id}}},
	)
	if err != nil {
		return fmt.Errorf("pull membership: %w", err)
	}
	if res.MatchedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
