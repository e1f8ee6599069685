package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
)

// Firestore is the Firestore-backed implementation of the repository
// aggregate. Numeric IDs come from transactional counter documents so
// they stay monotonic across instances.
type Firestore struct {
	client       *firestore.Client
	collection   *collectionRepository
	breach       *breachRepository
	assessment   *assessmentRepository
	notification *notificationRepository
	timeline     *timelineRepository
	document     *documentRepository
	schedule     *scheduleRepository
}

var _ interfaces.Repository = &Firestore{}

type options struct {
	databaseID       string
	collectionPrefix string
}

type Option func(*options)

// WithCollectionPrefix prefixes every Firestore collection name, letting
// multiple deployments share a database.
func WithCollectionPrefix(prefix string) Option {
	return func(o *options) {
		o.collectionPrefix = prefix
	}
}

// WithDatabaseID selects a named Firestore database instead of the default
func WithDatabaseID(databaseID string) Option {
	return func(o *options) {
		o.databaseID = databaseID
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var client *firestore.Client
	var err error
	if o.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, o.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:       client,
		collection:   newCollectionRepository(client),
		breach:       newBreachRepository(client),
		assessment:   newAssessmentRepository(client),
		notification: newNotificationRepository(client),
		timeline:     newTimelineRepository(client),
		document:     newDocumentRepository(client),
		schedule:     newScheduleRepository(client),
	}

	if o.collectionPrefix != "" {
		f.collection.collectionPrefix = o.collectionPrefix
		f.breach.collectionPrefix = o.collectionPrefix
		f.assessment.collectionPrefix = o.collectionPrefix
		f.notification.collectionPrefix = o.collectionPrefix
		f.timeline.collectionPrefix = o.collectionPrefix
		f.document.collectionPrefix = o.collectionPrefix
		f.schedule.collectionPrefix = o.collectionPrefix
	}

	return f, nil
}

func (f *Firestore) Collection() interfaces.CollectionRepository {
	return f.collection
}

func (f *Firestore) Breach() interfaces.BreachRepository {
	return f.breach
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) Timeline() interfaces.TimelineRepository {
	return f.timeline
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Schedule() interfaces.ScheduleRepository {
	return f.schedule
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
