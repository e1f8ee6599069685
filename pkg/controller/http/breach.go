package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

type breachRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Severity          string     `json:"severity"`
	Status            string     `json:"status"`
	DetectionDate     time.Time  `json:"detection_date"`
	DiscoveryDate     time.Time  `json:"discovery_date"`
	AffectedData      []string   `json:"affected_data"`
	AffectedUsers     []string   `json:"affected_users"`
	AffectedCount     int        `json:"affected_count"`
	BreachType        string     `json:"breach_type"`
	GeographicScope   string     `json:"geographic_scope"`
	Jurisdictions     []string   `json:"jurisdictions"`
	EntityType        string     `json:"entity_type"`
	DataEncrypted     bool       `json:"data_encrypted"`
	FinancialImpact   *float64   `json:"financial_impact"`
	ReputationImpact  *float64   `json:"reputation_impact"`
	OperationalImpact *float64   `json:"operational_impact"`
	MitigationNotes   string     `json:"mitigation_notes"`
}

func (req *breachRequest) toModel() *model.Breach {
	b := &model.Breach{
		Title:             req.Title,
		Description:       req.Description,
		Severity:          types.Severity(req.Severity),
		Status:            types.BreachStatus(req.Status),
		DetectionDate:     req.DetectionDate,
		DiscoveryDate:     req.DiscoveryDate,
		AffectedUsers:     req.AffectedUsers,
		AffectedCount:     req.AffectedCount,
		BreachType:        types.BreachType(req.BreachType),
		GeographicScope:   types.GeographicScope(req.GeographicScope),
		Jurisdictions:     req.Jurisdictions,
		EntityType:        req.EntityType,
		DataEncrypted:     req.DataEncrypted,
		FinancialImpact:   req.FinancialImpact,
		ReputationImpact:  req.ReputationImpact,
		OperationalImpact: req.OperationalImpact,
		MitigationNotes:   req.MitigationNotes,
	}
	if b.Status == "" {
		b.Status = types.BreachStatusDetected
	}
	for _, c := range req.AffectedData {
		b.AffectedData = append(b.AffectedData, types.DataCategory(c))
	}
	return b
}

type breachResponse struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Severity          string     `json:"severity"`
	Status            string     `json:"status"`
	DetectionDate     time.Time  `json:"detection_date"`
	DiscoveryDate     time.Time  `json:"discovery_date,omitempty"`
	AffectedData      []string   `json:"affected_data,omitempty"`
	AffectedUsers     []string   `json:"affected_users,omitempty"`
	AffectedCount     int        `json:"affected_count,omitempty"`
	BreachType        string     `json:"breach_type,omitempty"`
	GeographicScope   string     `json:"geographic_scope,omitempty"`
	Jurisdictions     []string   `json:"jurisdictions,omitempty"`
	EntityType        string     `json:"entity_type,omitempty"`
	DataEncrypted     bool       `json:"data_encrypted"`
	FinancialImpact   *float64   `json:"financial_impact,omitempty"`
	ReputationImpact  *float64   `json:"reputation_impact,omitempty"`
	OperationalImpact *float64   `json:"operational_impact,omitempty"`
	MitigationNotes   string     `json:"mitigation_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toBreachResponse(b *model.Breach) *breachResponse {
	resp := &breachResponse{
		ID:                b.ID,
		Title:             b.Title,
		Description:       b.Description,
		Severity:          b.Severity.String(),
		Status:            b.Status.String(),
		DetectionDate:     b.DetectionDate,
		DiscoveryDate:     b.DiscoveryDate,
		AffectedUsers:     b.AffectedUsers,
		AffectedCount:     b.AffectedCount,
		BreachType:        b.BreachType.String(),
		GeographicScope:   b.GeographicScope.String(),
		Jurisdictions:     b.Jurisdictions,
		EntityType:        b.EntityType,
		DataEncrypted:     b.DataEncrypted,
		FinancialImpact:   b.FinancialImpact,
		ReputationImpact:  b.ReputationImpact,
		OperationalImpact: b.OperationalImpact,
		MitigationNotes:   b.MitigationNotes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	for _, c := range b.AffectedData {
		resp.AffectedData = append(resp.AffectedData, c.String())
	}
	return resp
}

func (s *Server) createBreach(w http.ResponseWriter, r *http.Request) {
	var req breachRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.uc.Breach.CreateBreach(r.Context(), req.toModel())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, toBreachResponse(created))
}

func (s *Server) listBreaches(w http.ResponseWriter, r *http.Request) {
	breaches, err := s.uc.Breach.ListBreaches(r.Context())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	resp := make([]*breachResponse, len(breaches))
	for i, b := range breaches {
		resp[i] = toBreachResponse(b)
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"breaches": resp})
}

func (s *Server) getBreach(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	b, err := s.uc.Breach.GetBreach(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toBreachResponse(b))
}

func (s *Server) updateBreach(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req breachRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	b := req.toModel()
	b.ID = id

	updated, err := s.uc.Breach.UpdateBreach(r.Context(), b)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toBreachResponse(updated))
}

func (s *Server) deleteBreach(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if err := s.uc.Breach.DeleteBreach(r.Context(), id); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateBreachStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := s.uc.Breach.UpdateStatus(r.Context(), id, types.BreachStatus(req.Status), actorFrom(r))
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toBreachResponse(updated))
}

type factorResponse struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type riskAssessmentResponse struct {
	BreachID        int64                     `json:"breach_id"`
	Score           float64                   `json:"score"`
	Severity        string                    `json:"severity"`
	Factors         map[string]factorResponse `json:"factors"`
	Notifications   map[string]bool           `json:"notifications"`
	Deadlines       map[string]time.Time      `json:"deadlines,omitempty"`
	Recommendations []string                  `json:"recommendations,omitempty"`
	AssessedAt      time.Time                 `json:"assessed_at"`
}

func (s *Server) getRiskAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	ra, err := s.uc.Breach.GetRiskAssessment(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if ra == nil {
		respondError(r.Context(), w, goerr.Wrap(model.ErrNotFound, "no risk assessment computed", goerr.V("breach_id", id)))
		return
	}

	resp := &riskAssessmentResponse{
		BreachID:        ra.BreachID,
		Score:           ra.Score,
		Severity:        ra.Severity.String(),
		Factors:         make(map[string]factorResponse, len(ra.Factors)),
		Notifications:   make(map[string]bool, len(ra.Notifications)),
		Deadlines:       make(map[string]time.Time, len(ra.Deadlines)),
		Recommendations: ra.Recommendations,
		AssessedAt:      ra.AssessedAt,
	}
	for k, v := range ra.Factors {
		resp.Factors[string(k)] = factorResponse{Score: v.Score, Weight: v.Weight}
	}
	for k, v := range ra.Notifications {
		resp.Notifications[string(k)] = v
	}
	for k, v := range ra.Deadlines {
		resp.Deadlines[string(k)] = v
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

type frameworkResponse struct {
	Name               string     `json:"name"`
	AuthorityRequired  bool       `json:"authority_required"`
	AuthorityDeadline  *time.Time `json:"authority_deadline,omitempty"`
	AuthorityNote      string     `json:"authority_note,omitempty"`
	IndividualRequired bool       `json:"individual_required"`
	IndividualDeadline *time.Time `json:"individual_deadline,omitempty"`
	IndividualNote     string     `json:"individual_note,omitempty"`
	ExceptionsMet      []string   `json:"exceptions_met,omitempty"`
	Documentation      []string   `json:"documentation,omitempty"`
	Retention          string     `json:"retention,omitempty"`
}

type complianceResponse struct {
	BreachID               int64                        `json:"breach_id"`
	Frameworks             map[string]frameworkResponse `json:"frameworks"`
	AuthorityNotification  bool                         `json:"authority_notification"`
	IndividualNotification bool                         `json:"individual_notification"`
	ShortestDeadline       *time.Time                   `json:"shortest_deadline,omitempty"`
	Documentation          []string                     `json:"documentation,omitempty"`
	Retention              map[string]string            `json:"retention,omitempty"`
	AnalyzedAt             time.Time                    `json:"analyzed_at"`
}

func (s *Server) getComplianceReport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	cr, err := s.uc.Breach.GetComplianceReport(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if cr == nil {
		respondError(r.Context(), w, goerr.Wrap(model.ErrNotFound, "no compliance report computed", goerr.V("breach_id", id)))
		return
	}

	resp := &complianceResponse{
		BreachID:               cr.BreachID,
		Frameworks:             make(map[string]frameworkResponse, len(cr.Frameworks)),
		AuthorityNotification:  cr.AuthorityNotification,
		IndividualNotification: cr.IndividualNotification,
		ShortestDeadline:       cr.ShortestDeadline,
		Documentation:          cr.Documentation,
		Retention:              make(map[string]string, len(cr.Retention)),
		AnalyzedAt:             cr.AnalyzedAt,
	}
	for fid, fr := range cr.Frameworks {
		resp.Frameworks[string(fid)] = frameworkResponse{
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
	for fid, v := range cr.Retention {
		resp.Retention[string(fid)] = v
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) breachTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	entries, err := s.uc.Breach.Timeline(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"timeline": toTimelineResponses(entries)})
}

type notificationResponse struct {
	ID           string     `json:"id"`
	BreachID     int64      `json:"breach_id"`
	Type         string     `json:"type"`
	Recipients   []string   `json:"recipients,omitempty"`
	Template     string     `json:"template,omitempty"`
	Status       string     `json:"status"`
	ScheduleDate time.Time  `json:"schedule_date"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (s *Server) breachNotifications(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	notifications, err := s.uc.Breach.Notifications(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	resp := make([]*notificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = &notificationResponse{
			ID:           n.ID,
			BreachID:     n.BreachID,
			Type:         n.Type.String(),
			Recipients:   n.Recipients,
			Template:     n.Template,
			Status:       n.Status.String(),
			ScheduleDate: n.ScheduleDate,
			SentAt:       n.SentAt,
			CreatedAt:    n.CreatedAt,
		}
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"notifications": resp})
}

func (s *Server) sendNotification(w http.ResponseWriter, r *http.Request) {
	id := idStringParam(r)

	if err := s.uc.Breach.SendNotification(r.Context(), id); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "sent"})
}
