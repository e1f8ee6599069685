package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"
)

type breachRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newBreachRepository(client *firestore.Client) *breachRepository {
	return &breachRepository{
		client: client,
	}
}

func (r *breachRepository) breachesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_breaches"
	}
	return "breaches"
}

func (r *breachRepository) riskAssessmentsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risk_assessments"
	}
	return "risk_assessments"
}

func (r *breachRepository) complianceReportsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_compliance_reports"
	}
	return "compliance_reports"
}

func (r *breachRepository) Create(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.collectionPrefix, "breach_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := *b
	created.ID = nextID
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.breachesCollection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create breach", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *breachRepository) Get(ctx context.Context, id int64) (*model.Breach, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.breachesCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get breach", goerr.V("id", id))
	}

	var b model.Breach
	if err := docSnap.DataTo(&b); err != nil {
		return nil, goerr.Wrap(err, "failed to decode breach", goerr.V("id", id))
	}

	return &b, nil
}

func (r *breachRepository) List(ctx context.Context) ([]*model.Breach, error) {
	iter := r.client.Collection(r.breachesCollection()).Documents(ctx)
	defer iter.Stop()

	var breaches []*model.Breach
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate breaches")
		}

		var b model.Breach
		if err := docSnap.DataTo(&b); err != nil {
			return nil, goerr.Wrap(err, "failed to decode breach", goerr.V("doc_id", docSnap.Ref.ID))
		}

		breaches = append(breaches, &b)
	}

	sort.Slice(breaches, func(i, j int) bool {
		return breaches[i].ID < breaches[j].ID
	})

	return breaches, nil
}

func (r *breachRepository) Update(ctx context.Context, b *model.Breach) (*model.Breach, error) {
	docID := fmt.Sprintf("%d", b.ID)
	docRef := r.client.Collection(r.breachesCollection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", b.ID))
		}
		return nil, goerr.Wrap(err, "failed to check breach existence", goerr.V("id", b.ID))
	}

	var existing model.Breach
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode breach", goerr.V("id", b.ID))
	}

	updated := *b
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update breach", goerr.V("id", b.ID))
	}

	return &updated, nil
}

func (r *breachRepository) Delete(ctx context.Context, id int64) error {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.breachesCollection()).Doc(docID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "breach not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check breach existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete breach", goerr.V("id", id))
	}

	// Attached caches go with the breach
	if _, err := r.client.Collection(r.riskAssessmentsCollection()).Doc(docID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk assessment", goerr.V("id", id))
	}
	if _, err := r.client.Collection(r.complianceReportsCollection()).Doc(docID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete compliance report", goerr.V("id", id))
	}

	return nil
}

// riskAssessmentDoc flattens the typed maps of model.RiskAssessment into
// string-keyed maps for Firestore encoding.
type riskAssessmentDoc struct {
	BreachID        int64                     `firestore:"BreachID"`
	Factors         map[string]factorScoreDoc `firestore:"Factors"`
	Score           float64                   `firestore:"Score"`
	Severity        string                    `firestore:"Severity"`
	Notifications   map[string]bool           `firestore:"Notifications"`
	Deadlines       map[string]time.Time      `firestore:"Deadlines"`
	Recommendations []string                  `firestore:"Recommendations"`
	AssessedAt      time.Time                 `firestore:"AssessedAt"`
}

type factorScoreDoc struct {
	Score  float64 `firestore:"Score"`
	Weight float64 `firestore:"Weight"`
}

func toRiskAssessmentDoc(ra *model.RiskAssessment) *riskAssessmentDoc {
	doc := &riskAssessmentDoc{
		BreachID:        ra.BreachID,
		Factors:         make(map[string]factorScoreDoc, len(ra.Factors)),
		Score:           ra.Score,
		Severity:        string(ra.Severity),
		Notifications:   make(map[string]bool, len(ra.Notifications)),
		Deadlines:       make(map[string]time.Time, len(ra.Deadlines)),
		Recommendations: ra.Recommendations,
		AssessedAt:      ra.AssessedAt,
	}
	for k, v := range ra.Factors {
		doc.Factors[string(k)] = factorScoreDoc{Score: v.Score, Weight: v.Weight}
	}
	for k, v := range ra.Notifications {
		doc.Notifications[string(k)] = v
	}
	for k, v := range ra.Deadlines {
		doc.Deadlines[string(k)] = v
	}
	return doc
}

func fromRiskAssessmentDoc(d *riskAssessmentDoc) *model.RiskAssessment {
	ra := &model.RiskAssessment{
		BreachID:        d.BreachID,
		Factors:         make(map[model.RiskFactor]model.FactorScore, len(d.Factors)),
		Score:           d.Score,
		Severity:        types.Severity(d.Severity),
		Notifications:   make(map[types.RequirementKind]bool, len(d.Notifications)),
		Deadlines:       make(map[types.DeadlineKind]time.Time, len(d.Deadlines)),
		Recommendations: d.Recommendations,
		AssessedAt:      d.AssessedAt,
	}
	for k, v := range d.Factors {
		ra.Factors[model.RiskFactor(k)] = model.FactorScore{Score: v.Score, Weight: v.Weight}
	}
	for k, v := range d.Notifications {
		ra.Notifications[types.RequirementKind(k)] = v
	}
	for k, v := range d.Deadlines {
		ra.Deadlines[types.DeadlineKind(k)] = v
	}
	return ra
}

func (r *breachRepository) PutRiskAssessment(ctx context.Context, ra *model.RiskAssessment) error {
	docID := fmt.Sprintf("%d", ra.BreachID)
	if _, err := r.client.Collection(r.riskAssessmentsCollection()).Doc(docID).Set(ctx, toRiskAssessmentDoc(ra)); err != nil {
		return goerr.Wrap(err, "failed to put risk assessment", goerr.V("breach_id", ra.BreachID))
	}
	return nil
}

func (r *breachRepository) GetRiskAssessment(ctx context.Context, breachID int64) (*model.RiskAssessment, error) {
	docID := fmt.Sprintf("%d", breachID)
	docSnap, err := r.client.Collection(r.riskAssessmentsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get risk assessment", goerr.V("breach_id", breachID))
	}

	var d riskAssessmentDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk assessment", goerr.V("breach_id", breachID))
	}

	return fromRiskAssessmentDoc(&d), nil
}

// complianceReportDoc flattens model.ComplianceReport for Firestore
type complianceReportDoc struct {
	BreachID               int64                          `firestore:"BreachID"`
	Frameworks             map[string]frameworkResultDoc  `firestore:"Frameworks"`
	AuthorityNotification  bool                           `firestore:"AuthorityNotification"`
	IndividualNotification bool                           `firestore:"IndividualNotification"`
	ShortestDeadline       *time.Time                     `firestore:"ShortestDeadline"`
	Documentation          []string                       `firestore:"Documentation"`
	Retention              map[string]string              `firestore:"Retention"`
	AnalyzedAt             time.Time                      `firestore:"AnalyzedAt"`
}

type frameworkResultDoc struct {
	Framework          string     `firestore:"Framework"`
	Name               string     `firestore:"Name"`
	AuthorityRequired  bool       `firestore:"AuthorityRequired"`
	AuthorityDeadline  *time.Time `firestore:"AuthorityDeadline"`
	AuthorityNote      string     `firestore:"AuthorityNote"`
	IndividualRequired bool       `firestore:"IndividualRequired"`
	IndividualDeadline *time.Time `firestore:"IndividualDeadline"`
	IndividualNote     string     `firestore:"IndividualNote"`
	ExceptionsMet      []string   `firestore:"ExceptionsMet"`
	Documentation      []string   `firestore:"Documentation"`
	Retention          string     `firestore:"Retention"`
}

func toComplianceReportDoc(cr *model.ComplianceReport) *complianceReportDoc {
	doc := &complianceReportDoc{
		BreachID:               cr.BreachID,
		Frameworks:             make(map[string]frameworkResultDoc, len(cr.Frameworks)),
		AuthorityNotification:  cr.AuthorityNotification,
		IndividualNotification: cr.IndividualNotification,
		ShortestDeadline:       cr.ShortestDeadline,
		Documentation:          cr.Documentation,
		Retention:              make(map[string]string, len(cr.Retention)),
		AnalyzedAt:             cr.AnalyzedAt,
	}
	for id, fr := range cr.Frameworks {
		doc.Frameworks[string(id)] = frameworkResultDoc{
			Framework:          string(fr.Framework),
			Name:               fr.Name,
			AuthorityRequired:  fr.AuthorityRequired,
			AuthorityDeadline:  fr.AuthorityDeadline,
			AuthorityNote:      fr.AuthorityNote,
			IndividualRequired: fr.IndividualRequired,
			IndividualDeadline: fr.IndividualDeadline,
			IndividualNote:     fr.IndividualNote,
			ExceptionsMet:      fr.ExceptionsMet,
			Documentation:      fr.Documentation,
			Retention:          fr.Retention,
		}
	}
	for k, v := range cr.Retention {
		doc.Retention[string(k)] = v
	}
	return doc
}

func fromComplianceReportDoc(d *complianceReportDoc) *model.ComplianceReport {
	cr := &model.ComplianceReport{
		BreachID:               d.BreachID,
		Frameworks:             make(map[types.FrameworkID]model.FrameworkResult, len(d.Frameworks)),
		AuthorityNotification:  d.AuthorityNotification,
		IndividualNotification: d.IndividualNotification,
		ShortestDeadline:       d.ShortestDeadline,
		Documentation:          d.Documentation,
		Retention:              make(map[types.FrameworkID]string, len(d.Retention)),
		AnalyzedAt:             d.AnalyzedAt,
	}
	for id, fr := range d.Frameworks {
		cr.Frameworks[types.FrameworkID(id)] = model.FrameworkResult{
			Framework:          types.FrameworkID(fr.Framework),
			Name:               fr.Name,
			AuthorityRequired:  fr.AuthorityRequired,
			AuthorityDeadline:  fr.AuthorityDeadline,
			AuthorityNote:      fr.AuthorityNote,
			IndividualRequired: fr.IndividualRequired,
			IndividualDeadline: fr.IndividualDeadline,
			IndividualNote:     fr.IndividualNote,
			ExceptionsMet:      fr.ExceptionsMet,
			Documentation:      fr.Documentation,
			Retention:          fr.Retention,
		}
	}
	for k, v := range d.Retention {
		cr.Retention[types.FrameworkID(k)] = v
	}
	return cr
}

func (r *breachRepository) PutComplianceReport(ctx context.Context, cr *model.ComplianceReport) error {
	docID := fmt.Sprintf("%d", cr.BreachID)
	if _, err := r.client.Collection(r.complianceReportsCollection()).Doc(docID).Set(ctx, toComplianceReportDoc(cr)); err != nil {
		return goerr.Wrap(err, "failed to put compliance report", goerr.V("breach_id", cr.BreachID))
	}
	return nil
}

func (r *breachRepository) GetComplianceReport(ctx context.Context, breachID int64) (*model.ComplianceReport, error) {
	docID := fmt.Sprintf("%d", breachID)
	docSnap, err := r.client.Collection(r.complianceReportsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get compliance report", goerr.V("breach_id", breachID))
	}

	var d complianceReportDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode compliance report", goerr.V("breach_id", breachID))
	}

	return fromComplianceReportDoc(&d), nil
}
