package interest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
)

const (
	fieldUserID    = "user_id"
	fieldName      = "name"
	fieldIsActive  = "is_active"
	fieldCriteria  = "criteria"
	fieldCreatedAt = "created_at"
)

// interestToHash flattens an interest into its hash representation. Criteria
// stay as opaque JSON so unknown keys survive a round trip.
func interestToHash(in domain.Interest) (map[string]string, error) {
	crit, err := json.Marshal(in.Criteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}

	active := "0"
	if in.IsActive {
		active = "1"
	}

	return map[string]string{
		fieldUserID:    in.UserID,
		fieldName:      in.Name,
		fieldIsActive:  active,
		fieldCriteria:  string(crit),
		fieldCreatedAt: strconv.FormatInt(in.CreatedAt.UnixMilli(), 10),
	}, nil
}

func interestFromHash(id string, m map[string]string) (domain.Interest, error) {
	in := domain.Interest{
		ID:       id,
		UserID:   m[fieldUserID],
		Name:     m[fieldName],
		IsActive: m[fieldIsActive] == "1",
	}

	if raw := m[fieldCriteria]; raw != "" {
		var crit criteria.Raw
		if err := json.Unmarshal([]byte(raw), &crit); err != nil {
			return domain.Interest{}, fmt.Errorf("unmarshal criteria: %w", err)
		}
		in.Criteria = crit
	}

	if raw := m[fieldCreatedAt]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Interest{}, fmt.Errorf("parse created_at: %w", err)
		}
		in.CreatedAt = time.UnixMilli(ms).UTC()
	}

	return in, nil
}
