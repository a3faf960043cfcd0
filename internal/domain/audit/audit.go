package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hcm/internal/requestctx"
)

const (
	ActionEmployeeCreate = "employee.create"
	ActionEmployeeUpdate = "employee.update"
	ActionEmployeeDelete = "employee.delete"

	EntityEmployee = "employee"
)

type Event struct {
	ID            int64     `json:"id"`
	ActorID       string    `json:"actorId"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId"`
	RequestID     string    `json:"requestId"`
	IP            string    `json:"ip"`
	ChangedFields []string  `json:"changedFields"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record stores an event. Actor, request id and client ip come from ctx.
// Only field names are stored, never values.
func (s *Service) Record(ctx context.Context, action, entityType, entityID string, changedFields []string) error {
	if changedFields == nil {
		changedFields = []string{}
	}
	fields, err := json.Marshal(changedFields)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_logs (actor_account_id, action, entity_type, entity_id, request_id, ip, changed_fields)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, nullString(requestctx.GetActor(ctx)), action, entityType, entityID,
		nullString(requestctx.GetRequestID(ctx)), nullString(requestctx.GetClientIP(ctx)), fields)
	return err
}

// Prune deletes events created before cutoff.
func (s *Service) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery(`SELECT id, COALESCE(actor_account_id, ''), action, entity_type, COALESCE(entity_id, ''),
       COALESCE(request_id, ''), COALESCE(ip, ''), changed_fields, created_at`, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		var fields []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &fields, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &evt.ChangedFields); err != nil {
				return nil, err
			}
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_logs WHERE 1=1"
	args := []any{}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", len(args)+1)
		args = append(args, filter.EntityID)
	}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_account_id = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	return query, args
}

func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
