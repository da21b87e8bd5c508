package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/email"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
)

// Task types processed by the background worker.
const (
	TypeSerialAuditRecord        = "audit:serial:record"
	TypeTransactionCompletedMail = "email:transaction_completed"
)

// SerialAuditPayload carries a validated serial number to the audit collection.
type SerialAuditPayload struct {
	Entry models.SerialAudit `json:"entry"`
}

// TransactionCompletedPayload identifies a completed transaction whose buyer
// should be notified.
type TransactionCompletedPayload struct {
	TransactionID string `json:"transaction_id"`
}

// NewClient creates an asynq client over the given Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// NewSerialAuditTask builds the enqueueable serial-audit task.
func NewSerialAuditTask(entry models.SerialAudit) (*asynq.Task, error) {
	payload, err := json.Marshal(SerialAuditPayload{Entry: entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal serial audit payload: %w", err)
	}
	return asynq.NewTask(TypeSerialAuditRecord, payload, asynq.Queue("low")), nil
}

// NewTransactionCompletedTask builds the enqueueable completion-email task.
func NewTransactionCompletedTask(transactionID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TransactionCompletedPayload{TransactionID: transactionID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction completed payload: %w", err)
	}
	return asynq.NewTask(TypeTransactionCompletedMail, payload, asynq.Queue("default")), nil
}

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	repos       *repository.Repositories
	emailSender email.Sender
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(cfg *config.Config, repos *repository.Repositories, emailSender email.Sender) *TaskProcessor {
	return &TaskProcessor{cfg: cfg, repos: repos, emailSender: emailSender}
}

// HandleSerialAuditTask persists a serial audit record. The write is
// best-effort end to end, so a permanently failing task is logged and
// dropped rather than escalated.
func (p *TaskProcessor) HandleSerialAuditTask(ctx context.Context, task *asynq.Task) error {
	var payload SerialAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Printf("WARN: dropping malformed serial audit task: %v", err)
		return nil
	}
	if err := p.repos.SerialAudits.Insert(ctx, &payload.Entry); err != nil {
		return fmt.Errorf("failed to persist serial audit for listing %s: %w", payload.Entry.ListingID, err)
	}
	return nil
}

// HandleTransactionCompletedTask emails the buyer of a completed transaction.
func (p *TaskProcessor) HandleTransactionCompletedTask(ctx context.Context, task *asynq.Task) error {
	var payload TransactionCompletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Printf("WARN: dropping malformed transaction completed task: %v", err)
		return nil
	}

	txn, err := p.repos.Transactions.FindByID(ctx, payload.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s for completion email: %w", payload.TransactionID, err)
	}
	buyer, err := p.repos.Users.FindByID(ctx, txn.BuyerID)
	if err != nil {
		return fmt.Errorf("failed to load buyer %s for completion email: %w", txn.BuyerID, err)
	}

	subject := "Your watch purchase is complete"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour purchase (transaction %s) has been marked completed by the seller.\r\nAmount: %.2f\r\n\r\nTimevault",
		buyer.Name, txn.ID, txn.Price)
	if err := p.emailSender.Send(ctx, []string{buyer.Email}, subject, []byte(body)); err != nil {
		return fmt.Errorf("failed to send completion email for transaction %s: %w", txn.ID, err)
	}
	return nil
}

// SetupServer configures and returns an Asynq server with the task mux
// already registered.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("WARN: task %s failed: %v", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSerialAuditRecord, processor.HandleSerialAuditTask)
	mux.HandleFunc(TypeTransactionCompletedMail, processor.HandleTransactionCompletedTask)

	return srv, mux
}

// AsynqNotifier enqueues completion emails onto the task queue. Enqueue
// failures are logged only: notification is fire-and-forget by contract.
type AsynqNotifier struct {
	client *asynq.Client
}

// NewAsynqNotifier creates an AsynqNotifier.
func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

// TransactionCompleted enqueues the buyer notification for a completed transaction.
func (n *AsynqNotifier) TransactionCompleted(ctx context.Context, txn *models.Transaction) {
	task, err := NewTransactionCompletedTask(txn.ID)
	if err != nil {
		log.Printf("WARN: failed to build completion email task for transaction %s: %v", txn.ID, err)
		return
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		log.Printf("WARN: failed to enqueue completion email for transaction %s: %v", txn.ID, err)
	}
}

// LogNotifier is the demo-mode notifier: it only logs the event.
type LogNotifier struct{}

// TransactionCompleted logs the completed transaction.
func (LogNotifier) TransactionCompleted(ctx context.Context, txn *models.Transaction) {
	log.Printf("Transaction %s completed (buyer %s, amount %.2f)", txn.ID, txn.BuyerID, txn.Price)
}
