package app

import (
	"net/http"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/accounts"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/catalog"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/httpapi"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/orders"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/reports"
)

// ServiceFactory creates business logic services with their dependencies
type ServiceFactory struct {
	container *Container
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(container *Container) *ServiceFactory {
	return &ServiceFactory{
		container: container,
	}
}

// CreatePublisher returns the Kafka event publisher, or a no-op one when no
// broker is configured.
func (f *ServiceFactory) CreatePublisher() orders.EventPublisher {
	if producer := f.container.MessageProducer(); producer != nil {
		return orders.NewKafkaPublisher(producer, f.container.Logger())
	}
	return orders.NopPublisher{}
}

func (f *ServiceFactory) CreateIntakeService(publisher orders.EventPublisher) *orders.IntakeService {
	c := f.container
	return orders.NewIntakeService(c.Store(), publisher, c.Logger(), c.Tracer(), c.Meter(), c.Config().MarketName)
}

func (f *ServiceFactory) CreateStatusService(publisher orders.EventPublisher) *orders.StatusService {
	c := f.container
	return orders.NewStatusService(c.Store(), publisher, c.Logger(), c.Tracer())
}

func (f *ServiceFactory) CreateConfirmationService() *orders.ConfirmationService {
	c := f.container
	return orders.NewConfirmationService(c.Store(), c.Logger(), c.Tracer(), c.Meter())
}

func (f *ServiceFactory) CreateCleanupService(publisher orders.EventPublisher) *orders.CleanupService {
	c := f.container
	return orders.NewCleanupService(c.Store(), publisher, c.Logger(), c.Tracer(), c.Meter())
}

// CreateConsumerService returns the order event consumer, or nil when stock
// reconciliation runs inline.
func (f *ServiceFactory) CreateConsumerService(reconciler orders.Reconciler) orders.ConsumerService {
	consumer := f.container.MessageConsumer()
	if consumer == nil {
		return nil
	}
	handler := orders.NewMessageHandler(reconciler, f.container.Logger())
	return orders.NewConsumerService(consumer, handler, f.container.Logger())
}

// CreateRouter wires every workflow behind the HTTP API.
func (f *ServiceFactory) CreateRouter(publisher orders.EventPublisher, confirmation *orders.ConfirmationService) http.Handler {
	c := f.container
	status := f.CreateStatusService(publisher)
	inline := c.Config().ReconcileMode == config.ReconcileInline

	return httpapi.NewRouter(httpapi.Services{
		Intake:         f.CreateIntakeService(publisher),
		Flow:           orders.NewSellerFlow(status, confirmation, inline, c.Logger()),
		Status:         status,
		Cleanup:        f.CreateCleanupService(publisher),
		Catalog:        catalog.NewService(c.Store(), c.Logger()),
		Accounts:       accounts.NewService(c.Store(), c.Logger()),
		Reports:        reports.NewService(c.Store(), c.Logger()),
		Idempotency:    c.Idempotency(),
		IdempotencyTTL: c.Config().IdempotencyTTL,
	}, c.Logger())
}
