package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

const profileCollection = "users"

type profileMongoRepository struct {
	db  *mongo.Database
	now func() time.Time
}

// NewProfileMongoRepository creates a ProfileRepository backed by the users
// collection. The user id is the document id, so creation races resolve to
// a single winner through the unique _id index.
func NewProfileMongoRepository(db *mongo.Database) ProfileRepository {
	return &profileMongoRepository{db: db, now: time.Now}
}

func (r *profileMongoRepository) GetOrCreate(
	ctx context.Context,
	identity model.Identity,
) (*model.ProfileRecord, bool, error) {
	rec := newDefaultRecord(identity, uuid.NewString(), r.now())

	_, err := r.db.Collection(profileCollection).InsertOne(ctx, toProfileDoc(rec))
	if err == nil {
		return rec, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, storeErr(err)
	}

	// Lost the creation race or the record already existed; either way the
	// welcome bonus was granted exactly once by whoever inserted first.
	existing, err := r.Get(ctx, identity.UserID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

func (r *profileMongoRepository) Get(ctx context.Context, userID string) (*model.ProfileRecord, error) {
	result := r.db.Collection(profileCollection).FindOne(ctx, bson.M{"_id": userID})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	var doc profileDoc
	if err := result.Decode(&doc); err != nil {
		return nil, storeErr(err)
	}

	rec, err := doc.toModel()
	if err != nil {
		return nil, storeErr(err)
	}

	return rec, nil
}

func (r *profileMongoRepository) Update(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.ProfileRecord, error) {
	// Build update query; ledger fields are never part of it, so a
	// concurrent earn/spend commit is preserved untouched.
	updateMap := bson.M{}
	set := func(key string, value *string) {
		if value != nil {
			updateMap[key] = *value
		}
	}
	set("display_name", params.DisplayName)
	set("photo_url", params.PhotoURL)
	set("phone", params.Phone)
	set("date_of_birth", params.DateOfBirth)
	set("gender", params.Gender)
	set("institute", params.Institute)
	set("course", params.Course)
	set("year_of_study", params.YearOfStudy)
	set("enrollment_number", params.EnrollmentNumber)
	set("department", params.Department)
	set("specialization", params.Specialization)
	set("address", params.Address)
	set("city", params.City)
	set("state", params.State)
	set("pincode", params.Pincode)
	set("bio", params.Bio)
	set("interests", params.Interests)
	set("skills", params.Skills)
	set("achievements", params.Achievements)
	set("github_url", params.GithubURL)
	set("linkedin_url", params.LinkedinURL)
	set("twitter_url", params.TwitterURL)
	set("website_url", params.WebsiteURL)

	if len(updateMap) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	updateMap["updated_at"] = formatTimestamp(r.now())

	result := r.db.Collection(profileCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	var doc profileDoc
	if err := result.Decode(&doc); err != nil {
		return nil, storeErr(err)
	}

	rec, err := doc.toModel()
	if err != nil {
		return nil, storeErr(err)
	}

	return rec, nil
}

func (r *profileMongoRepository) ApplyEarn(
	ctx context.Context,
	userID string,
	tx model.Transaction,
) (*model.ProfileRecord, error) {
	// Balance increment and history append commit in one server-side
	// update, so no partial mutation is ever observable.
	result := r.db.Collection(profileCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc":  bson.M{"balance": tx.Amount},
			"$push": bson.M{"history": toTransactionDoc(tx)},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr(err)
	}

	var doc profileDoc
	if err := result.Decode(&doc); err != nil {
		return nil, storeErr(err)
	}

	rec, err := doc.toModel()
	if err != nil {
		return nil, storeErr(err)
	}

	return rec, nil
}

func (r *profileMongoRepository) ApplySpend(
	ctx context.Context,
	userID string,
	tx model.Transaction,
) (bool, error) {
	// The balance guard is part of the filter, so the sufficiency check and
	// the decrement are a single operation against the committed balance.
	result, err := r.db.Collection(profileCollection).UpdateOne(
		ctx,
		bson.M{"_id": userID, "balance": bson.M{"$gte": tx.Amount}},
		bson.M{
			"$inc":  bson.M{"balance": -tx.Amount},
			"$push": bson.M{"history": toTransactionDoc(tx)},
		},
	)
	if err != nil {
		return false, storeErr(err)
	}

	if result.MatchedCount == 1 {
		return true, nil
	}

	// No match means either the record is missing or funds are
	// insufficient; distinguish the two for the caller.
	if _, err := r.Get(ctx, userID); err != nil {
		return false, err
	}

	return false, nil
}
