package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberone/financial-mesh/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB holds the append-only collections: transactions, messages,
// security logs and audit entries
type MongoDB struct {
	client       *mongo.Client
	transactions *mongo.Collection
	messages     *mongo.Collection
	logs         *mongo.Collection
	audit        *mongo.Collection
}

// creates a new MongoDB instance
func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Mongodb: %w", err)
	}

	// pinging the database
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping Mongodb: %w", err)
	}

	database := client.Database(dbName)
	m := &MongoDB{
		client:       client,
		transactions: database.Collection("transactions"),
		messages:     database.Collection("messages"),
		logs:         database.Collection("security_logs"),
		audit:        database.Collection("audit_entries"),
	}

	txIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := m.transactions.Indexes().CreateMany(ctx, txIndexes); err != nil {
		return nil, fmt.Errorf("failed to create transaction indexes: %w", err)
	}

	msgIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_id", Value: 1}}},
		{Keys: bson.D{{Key: "to_id", Value: 1}}},
	}
	if _, err := m.messages.Indexes().CreateMany(ctx, msgIndexes); err != nil {
		return nil, fmt.Errorf("failed to create message indexes: %w", err)
	}

	return m, nil
}

// closes the mongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// appends a transaction to the ledger
func (m *MongoDB) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := m.transactions.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// retrieves the transaction by ID
func (m *MongoDB) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := m.transactions.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// overwrites a transaction record (status transitions)
func (m *MongoDB) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	res, err := m.transactions.ReplaceOne(ctx, bson.M{"_id": tx.ID}, tx)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	return nil
}

// retrieves the global ledger, newest first
func (m *MongoDB) ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.transactions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}

// retrieves transactions where the account is sender or receiver
func (m *MongoDB) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	filter := bson.M{"$or": []bson.M{
		{"sender_id": accountID},
		{"receiver_id": accountID},
	}}

	cursor, err := m.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}

// appends a message
func (m *MongoDB) SaveMessage(ctx context.Context, msg *models.Message) error {
	_, err := m.messages.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// retrieves the message history between two accounts, oldest first
func (m *MongoDB) ListConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	filter := bson.M{"$or": []bson.M{
		{"from_id": a, "to_id": b},
		{"from_id": b, "to_id": a},
	}}

	cursor, err := m.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var msgs []*models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// retrieves every message an account sent or received, oldest first
func (m *MongoDB) ListMessagesByAccount(ctx context.Context, accountID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	filter := bson.M{"$or": []bson.M{
		{"from_id": accountID},
		{"to_id": accountID},
	}}

	cursor, err := m.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var msgs []*models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// appends a security-log entry
func (m *MongoDB) AppendLog(ctx context.Context, entry *models.SecurityLog) error {
	_, err := m.logs.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert security log: %w", err)
	}
	return nil
}

// retrieves security-log entries, newest first
func (m *MongoDB) ListLogs(ctx context.Context, limit, offset int) ([]*models.SecurityLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.logs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find security logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.SecurityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode security logs: %w", err)
	}
	return entries, nil
}

// appends an audit entry
func (m *MongoDB) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	_, err := m.audit.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// retrieves audit entries, newest first
func (m *MongoDB) ListAudit(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := m.audit.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}
