package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
)

type CreateRequest struct {
	ChargerID   string           `json:"charger_id"`
	ChargerName string           `json:"charger_name"`
	UserID      string           `json:"user_id"`
	Type        ContributionType `json:"type"`
	Rating      *int             `json:"rating"`
	Comment     *string          `json:"comment"`
	WaitMinutes *int             `json:"wait_minutes"`
	PlugType    *string          `json:"plug_type"`
	PlugWorking *bool            `json:"plug_working"`
	Status      *ChargerStatus   `json:"status"`
	PhotoURL    *string          `json:"photo_url"`
	CityName    *string          `json:"city_name"`
}

type VoteRequest struct {
	ContributionID string
	UserID         string
	Direction      VoteDirection
}

// CreateResult carries the stored contribution and the coins it earned.
type CreateResult struct {
	Contribution   *Contribution              `json:"contribution"`
	FirstToCharger bool                       `json:"first_to_charger"`
	Reward         *rewardsdomain.AwardResult `json:"reward"`
}

// VoteResult carries the updated contribution. Reward is nil when the vote
// changed an earlier vote.
type VoteResult struct {
	Contribution *Contribution              `json:"contribution"`
	Reward       *rewardsdomain.AwardResult `json:"reward,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Vote(ctx context.Context, req VoteRequest) (*VoteResult, error)
	GetByID(ctx context.Context, id string) (*Contribution, error)
	ListByCharger(ctx context.Context, chargerID string) ([]Contribution, error)
	Summary(ctx context.Context, chargerID string) (*Summary, error)
}

// Validate checks identity fields and the type-specific payload.
func (r *CreateRequest) Validate() error {
	r.ChargerID = strings.TrimSpace(r.ChargerID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.ChargerName = strings.TrimSpace(r.ChargerName)
	if r.ChargerID == "" {
		return ErrInvalidCharger
	}
	if r.UserID == "" {
		return ErrInvalidUser
	}
	r.Type = ContributionType(strings.ToUpper(strings.TrimSpace(string(r.Type))))

	switch r.Type {
	case ContributionTypePhoto:
		if r.PhotoURL == nil || strings.TrimSpace(*r.PhotoURL) == "" {
			return ErrInvalidPhoto
		}
	case ContributionTypeReview:
		if r.Rating == nil || *r.Rating < 1 || *r.Rating > 5 {
			return ErrInvalidRating
		}
	case ContributionTypeWaitTime:
		if r.WaitMinutes == nil || *r.WaitMinutes < 0 || *r.WaitMinutes > MaxWaitMinutes {
			return ErrInvalidWaitTime
		}
	case ContributionTypePlugCheck:
		if r.PlugType == nil || strings.TrimSpace(*r.PlugType) == "" || r.PlugWorking == nil {
			return ErrInvalidPlug
		}
		plug := strings.ToUpper(strings.TrimSpace(*r.PlugType))
		r.PlugType = &plug
	case ContributionTypeStatusUpdate:
		if r.Status == nil || !r.Status.Valid() {
			return ErrInvalidStatus
		}
	default:
		return ErrInvalidType
	}

	if r.CityName != nil {
		city := strings.TrimSpace(*r.CityName)
		if city == "" {
			r.CityName = nil
		} else {
			r.CityName = &city
		}
	}
	return nil
}

// MaxWaitMinutes bounds a reported queue wait.
const MaxWaitMinutes = 600

// ToContribution builds the record stored for a validated request.
func (r CreateRequest) ToContribution(id snowflake.ID, now time.Time) *Contribution {
	return &Contribution{
		ID:            id,
		ChargerID:     r.ChargerID,
		ChargerName:   r.ChargerName,
		UserID:        r.UserID,
		Type:          r.Type,
		Rating:        r.Rating,
		Comment:       r.Comment,
		WaitMinutes:   r.WaitMinutes,
		PlugType:      r.PlugType,
		PlugWorking:   r.PlugWorking,
		Status:        r.Status,
		PhotoURL:      r.PhotoURL,
		CityName:      r.CityName,
		Timestamp:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
		ValidatedBy:   []string{},
		InvalidatedBy: []string{},
	}
}

var (
	ErrInvalidID            = errors.New("invalid_contribution_id")
	ErrInvalidCharger       = errors.New("invalid_charger_id")
	ErrInvalidUser          = errors.New("invalid_user_id")
	ErrInvalidType          = errors.New("invalid_contribution_type")
	ErrInvalidRating        = errors.New("invalid_rating")
	ErrInvalidWaitTime      = errors.New("invalid_wait_minutes")
	ErrInvalidPlug          = errors.New("invalid_plug_check")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPhoto         = errors.New("invalid_photo_url")
	ErrInvalidVoteDirection = errors.New("invalid_vote_direction")
	ErrContributionNotFound = errors.New("contribution_not_found")
	ErrDuplicateVote        = errors.New("duplicate_vote")
	ErrSelfVote             = errors.New("self_vote")
)

// IsConflict reports vote conflicts: the contribution is left unchanged.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateVote) || errors.Is(err, ErrSelfVote)
}

func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidCharger),
		errors.Is(err, ErrInvalidUser),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrInvalidWaitTime),
		errors.Is(err, ErrInvalidPlug),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPhoto),
		errors.Is(err, ErrInvalidVoteDirection):
		return true
	default:
		return false
	}
}

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
