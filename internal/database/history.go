// internal/database/history.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blitzuno/blitzuno/internal/room"
)

// InsertActionRecords persists a batch of drained action records in one
// transaction. Batches are small (historian flush size), so a plain loop of
// Execs inside the tx is sufficient.
func InsertActionRecords(ctx context.Context, recs []room.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO game_actions (room_code, game_id, player_id, action_type, action_id, turn_seq, occurred_at)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		`
		for _, rec := range recs {
			if _, e := tx.Exec(ctx, q,
				rec.RoomCode, rec.GameID, rec.PlayerID, rec.Type, rec.ActionID, rec.TurnSeq, rec.At,
			); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert action records: %w", err)
	}
	return nil
}

// RecordMatch upserts a finished match row keyed by game id.
func RecordMatch(ctx context.Context, rec room.MatchRecord) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO matches (game_id, room_code, winner_id, end_reason, ended_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5)
			ON CONFLICT (game_id)
			DO UPDATE SET winner_id = EXCLUDED.winner_id, end_reason = EXCLUDED.end_reason, ended_at = EXCLUDED.ended_at
		`
		if _, e := tx.Exec(ctx, upsert, rec.GameID, rec.RoomCode, rec.WinnerID, rec.EndReason, rec.EndedAt); e != nil {
			return e
		}

		q := `
			INSERT INTO match_players (game_id, player_id, did_win)
			VALUES ($1, $2, $3)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET did_win = EXCLUDED.did_win
		`
		for _, pid := range rec.Players {
			if _, e := tx.Exec(ctx, q, rec.GameID, pid, pid == rec.WinnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx record match: %w", err)
	}
	return nil
}
