package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const profileCollection = "user_profiles"

// MongoStore keeps one document per user in the user_profiles collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type entryDoc struct {
	Title  string          `bson:"title"`
	Amount bson.Decimal128 `bson:"amount"`
}

type challengeDoc struct {
	ID    int    `bson:"id"`
	Title string `bson:"title"`
}

type profileDoc struct {
	ID              string          `bson:"_id"`
	Email           string          `bson:"email"`
	FirstName       string          `bson:"first_name"`
	LastName        string          `bson:"last_name"`
	Income          bson.Decimal128 `bson:"income"`
	SavingsGoal     bson.Decimal128 `bson:"savings_goal"`
	FixedBudgets    []entryDoc      `bson:"fixed_budgets"`
	VariableBudgets []entryDoc      `bson:"variable_budgets"`
	Challenges      []challengeDoc  `bson:"challenges"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the named database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(profileCollection),
	}, nil
}

func (s *MongoStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	doc := bson.M{
		"email":            p.Email,
		"first_name":       p.FirstName,
		"last_name":        p.LastName,
		"income":           toDecimal128(p.Income),
		"savings_goal":     toDecimal128(p.SavingsGoal),
		"fixed_budgets":    toEntryDocs(p.FixedBudgets),
		"variable_budgets": toEntryDocs(p.VariableBudgets),
		"challenges":       toChallengeDocs(p.Challenges),
		"created_at":       now,
		"updated_at":       now,
	}
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

func (s *MongoStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	doc, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return &models.Profile{
		ID:              doc.ID,
		Email:           doc.Email,
		FirstName:       doc.FirstName,
		LastName:        doc.LastName,
		Income:          fromDecimal128(doc.Income),
		SavingsGoal:     fromDecimal128(doc.SavingsGoal),
		FixedBudgets:    fromEntryDocs(doc.FixedBudgets),
		VariableBudgets: fromEntryDocs(doc.VariableBudgets),
		Challenges:      fromChallengeDocs(doc.Challenges),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}
	set := bson.M{}
	if update.FirstName != nil {
		set["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.Income != nil {
		set["income"] = toDecimal128(*update.Income)
	}
	if update.SavingsGoal != nil {
		set["savings_goal"] = toDecimal128(*update.SavingsGoal)
	}
	return s.set(ctx, userID, set)
}

func (s *MongoStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	doc, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return emptyBudget(), nil
	}
	return &models.BudgetData{
		FixedBudgets:    fromEntryDocs(doc.FixedBudgets),
		VariableBudgets: fromEntryDocs(doc.VariableBudgets),
	}, nil
}

func (s *MongoStore) UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error {
	if update.Empty() {
		return nil
	}
	set := bson.M{}
	if update.FixedBudgets != nil {
		set["fixed_budgets"] = toEntryDocs(update.FixedBudgets)
	}
	if update.VariableBudgets != nil {
		set["variable_budgets"] = toEntryDocs(update.VariableBudgets)
	}
	return s.set(ctx, userID, set)
}

func (s *MongoStore) GetIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	doc, err := s.find(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if doc == nil {
		return decimal.Zero, ErrNotFound
	}
	return fromDecimal128(doc.Income), nil
}

func (s *MongoStore) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) error {
	return s.set(ctx, userID, bson.M{"income": toDecimal128(income)})
}

func (s *MongoStore) GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	doc, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []models.Challenge{}, nil
	}
	return fromChallengeDocs(doc.Challenges), nil
}

func (s *MongoStore) UpdateChallenges(ctx context.Context, userID string, challenges []models.Challenge) error {
	return s.set(ctx, userID, bson.M{"challenges": toChallengeDocs(challenges)})
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) find(ctx context.Context, userID string) (*profileDoc, error) {
	var doc profileDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile: %w", err)
	}
	return &doc, nil
}

// set applies fields with upsert; created_at is only written on insert.
func (s *MongoStore) set(ctx context.Context, userID string, fields bson.M) error {
	now := time.Now().UTC()
	fields["updated_at"] = now
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": fields, "$setOnInsert": bson.M{"created_at": now}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

func toDecimal128(d decimal.Decimal) bson.Decimal128 {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v bson.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toEntryDocs(entries []models.BudgetEntry) []entryDoc {
	docs := make([]entryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entryDoc{Title: e.Title, Amount: toDecimal128(e.Amount)})
	}
	return docs
}

func fromEntryDocs(docs []entryDoc) []models.BudgetEntry {
	entries := make([]models.BudgetEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, models.BudgetEntry{Title: d.Title, Amount: fromDecimal128(d.Amount)})
	}
	return entries
}

func toChallengeDocs(challenges []models.Challenge) []challengeDoc {
	docs := make([]challengeDoc, 0, len(challenges))
	for _, c := range challenges {
		docs = append(docs, challengeDoc{ID: c.ID, Title: c.Title})
	}
	return docs
}

func fromChallengeDocs(docs []challengeDoc) []models.Challenge {
	challenges := make([]models.Challenge, 0, len(docs))
	for _, d := range docs {
		challenges = append(challenges, models.Challenge{ID: d.ID, Title: d.Title})
	}
	return challenges
}
