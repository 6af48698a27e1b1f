package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mafia-be/internal/service/game"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	room_name TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP NOT NULL,
	winning_faction TEXT NOT NULL DEFAULT '',
	winning_roles TEXT NOT NULL DEFAULT '[]',
	conversation_history TEXT NOT NULL DEFAULT '[]',
	action_history TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS match_participants (
	match_id TEXT NOT NULL REFERENCES matches(id),
	username TEXT NOT NULL,
	role TEXT NOT NULL,
	won BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches(ended_at);
`

type MatchRow struct {
	ID                  string    `db:"id"`
	RoomName            string    `db:"room_name"`
	StartedAt           time.Time `db:"started_at"`
	EndedAt             time.Time `db:"ended_at"`
	WinningFaction      string    `db:"winning_faction"`
	WinningRoles        string    `db:"winning_roles"`
	ConversationHistory string    `db:"conversation_history"`
	ActionHistory       string    `db:"action_history"`
}

type ParticipantRow struct {
	MatchID  string `db:"match_id"`
	Username string `db:"username"`
	Role     string `db:"role"`
	Won      bool   `db:"won"`
}

// MatchStore 实现 game.Sink，保存结束的对局
type MatchStore struct {
	db *sqlx.DB
}

// Open 支持 sqlite3 与 pgx 两种驱动
func Open(driver, dsn string) (*MatchStore, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if driver == "sqlite3" {
		// 内存数据库每个连接都是独立的库
		db.SetMaxOpenConns(1)
	}

	ms := &MatchStore{db: db}
	if err := ms.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	zap.L().Info(
		"数据库初始化完成",
		zap.String("driver", driver),
	)

	return ms, nil
}

func (ms *MatchStore) migrate() error {
	if _, err := ms.db.Exec(schema); err != nil {
		return fmt.Errorf("初始化数据表失败: %w", err)
	}
	return nil
}

func (ms *MatchStore) Close() error {
	return ms.db.Close()
}

func (ms *MatchStore) SaveMatch(ctx context.Context, summary game.MatchSummary) error {
	winningRoles, err := json.Marshal(nonNil(summary.WinningRoles))
	if err != nil {
		return err
	}
	conversation, err := json.Marshal(nonNil(summary.ConversationHistory))
	if err != nil {
		return err
	}
	actions, err := json.Marshal(nonNil(summary.ActionHistory))
	if err != nil {
		return err
	}

	tx, err := ms.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO matches (id, room_name, started_at, ended_at, winning_faction, winning_roles, conversation_history, action_history)
		VALUES (:id, :room_name, :started_at, :ended_at, :winning_faction, :winning_roles, :conversation_history, :action_history)`,
		MatchRow{
			ID:                  summary.ID,
			RoomName:            summary.RoomName,
			StartedAt:           summary.StartedAt.UTC(),
			EndedAt:             summary.EndedAt.UTC(),
			WinningFaction:      summary.WinningFaction,
			WinningRoles:        string(winningRoles),
			ConversationHistory: string(conversation),
			ActionHistory:       string(actions),
		},
	)
	if err != nil {
		return fmt.Errorf("写入对局失败: %w", err)
	}

	for _, p := range summary.Participants {
		_, err = tx.ExecContext(
			ctx,
			tx.Rebind("INSERT INTO match_participants (match_id, username, role, won) VALUES (?, ?, ?, ?)"),
			summary.ID, p.Username, p.Role, p.Won,
		)
		if err != nil {
			return fmt.Errorf("写入参与者失败: %w", err)
		}
	}

	return tx.Commit()
}

// RecentMatches 按结束时间倒序返回最近的对局
func (ms *MatchStore) RecentMatches(ctx context.Context, limit int) ([]game.MatchSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []MatchRow
	err := ms.db.SelectContext(
		ctx,
		&rows,
		ms.db.Rebind("SELECT * FROM matches ORDER BY ended_at DESC LIMIT ?"),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("查询对局失败: %w", err)
	}

	summaries := make([]game.MatchSummary, 0, len(rows))
	for _, row := range rows {
		summary, err := ms.toSummary(ctx, row)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (ms *MatchStore) toSummary(ctx context.Context, row MatchRow) (game.MatchSummary, error) {
	summary := game.MatchSummary{
		ID:             row.ID,
		RoomName:       row.RoomName,
		StartedAt:      row.StartedAt,
		EndedAt:        row.EndedAt,
		WinningFaction: row.WinningFaction,
	}

	if err := json.Unmarshal([]byte(row.WinningRoles), &summary.WinningRoles); err != nil {
		return summary, fmt.Errorf("解析获胜角色失败: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ConversationHistory), &summary.ConversationHistory); err != nil {
		return summary, fmt.Errorf("解析聊天记录失败: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ActionHistory), &summary.ActionHistory); err != nil {
		return summary, fmt.Errorf("解析行动记录失败: %w", err)
	}

	var participants []ParticipantRow
	err := ms.db.SelectContext(
		ctx,
		&participants,
		ms.db.Rebind("SELECT match_id, username, role, won FROM match_participants WHERE match_id = ?"),
		row.ID,
	)
	if err != nil {
		return summary, fmt.Errorf("查询参与者失败: %w", err)
	}

	for _, p := range participants {
		summary.Participants = append(summary.Participants, game.Participant{
			Username: p.Username,
			Role:     p.Role,
			Won:      p.Won,
		})
	}

	return summary, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
