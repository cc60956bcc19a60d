package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TradeRow is the raw ingestion shape used by import flows and database
// rows that still carry numbers and timestamps as strings.
type TradeRow struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	ProfileID       string   `json:"profile_id"`
	Symbol          string   `json:"symbol"`
	Side            string   `json:"side"`
	EntryPrice      string   `json:"entry_price"`
	ExitPrice       string   `json:"exit_price"`
	Quantity        string   `json:"quantity"`
	EntryTime       string   `json:"entry_time"`
	ExitTime        string   `json:"exit_time"`
	Duration        *string  `json:"duration"`
	PnL             string   `json:"pnl"`
	PnLPercentage   string   `json:"pnl_percentage"`
	GrossPnL        string   `json:"gross_pnl"`
	Commission      string   `json:"commission"`
	StopLoss        *string  `json:"stop_loss"`
	Target          *string  `json:"target"`
	InitialRisk     *string  `json:"initial_risk"`
	RiskRewardRatio *string  `json:"risk_reward_ratio"`
	Slippage        *string  `json:"slippage"`
	EntryType       string   `json:"entry_type"`
	ExitType        string   `json:"exit_type"`
	EmotionBefore   string   `json:"emotion_before"`
	EmotionAfter    string   `json:"emotion_after"`
	RuleFollowed    *bool    `json:"rule_followed"`
	Notes           string   `json:"notes"`
	Tags            []string `json:"tags"`
	Strategy        string   `json:"strategy"`
	Setup           string   `json:"setup"`
	Timeframe       string   `json:"timeframe"`
	Grade           string   `json:"grade"`
	CreatedAt       string   `json:"created_at"`
}

// ToTrade normalizes the row. Only a malformed identifier is an error; every
// numeric or time field degrades to its zero value instead.
func (r TradeRow) ToTrade() (Trade, error) {
	var id uuid.UUID
	if r.ID != "" {
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return Trade{}, ErrInvalidID
		}
		id = parsed
	} else {
		id = uuid.New()
	}

	userID, err := parseOptionalUUID(r.UserID)
	if err != nil {
		return Trade{}, err
	}
	profileID, err := parseOptionalUUID(r.ProfileID)
	if err != nil {
		return Trade{}, err
	}

	t := Trade{
		ID:              id,
		UserID:          userID,
		ProfileID:       profileID,
		Symbol:          strings.ToUpper(strings.TrimSpace(r.Symbol)),
		Side:            TradeSide(strings.ToLower(strings.TrimSpace(r.Side))),
		EntryPrice:      ParseNumber(r.EntryPrice),
		ExitPrice:       ParseNumber(r.ExitPrice),
		Quantity:        ParseNumber(r.Quantity),
		EntryTime:       ParseTimestamp(r.EntryTime),
		DurationMinutes: ParseOptionalNumber(r.Duration),
		PnL:             ParseNumber(r.PnL),
		PnLPercentage:   ParseNumber(r.PnLPercentage),
		GrossPnL:        ParseNumber(r.GrossPnL),
		Commission:      ParseNumber(r.Commission),
		StopLoss:        ParseOptionalNumber(r.StopLoss),
		Target:          ParseOptionalNumber(r.Target),
		InitialRisk:     ParseOptionalNumber(r.InitialRisk),
		RiskRewardRatio: ParseOptionalNumber(r.RiskRewardRatio),
		Slippage:        ParseOptionalNumber(r.Slippage),
		EntryType:       r.EntryType,
		ExitType:        r.ExitType,
		EmotionBefore:   strings.ToLower(strings.TrimSpace(r.EmotionBefore)),
		EmotionAfter:    strings.ToLower(strings.TrimSpace(r.EmotionAfter)),
		RuleFollowed:    r.RuleFollowed,
		Notes:           r.Notes,
		Tags:            r.Tags,
		Strategy:        strings.TrimSpace(r.Strategy),
		Setup:           strings.TrimSpace(r.Setup),
		Timeframe:       r.Timeframe,
		Grade:           r.Grade,
		CreatedAt:       ParseTimestamp(r.CreatedAt),
	}

	if exit := ParseTimestamp(r.ExitTime); !exit.IsZero() {
		t.ExitTime = &exit
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	return t, nil
}

func parseOptionalUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
