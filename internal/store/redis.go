package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

const (
	messageTTL  = 7 * 24 * time.Hour
	searchTTL   = 7 * 24 * time.Hour
	sessionsKey = "sessions"
)

// RedisStore handles Redis operations for session history and caching.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client exposes the underlying client for middleware that needs raw
// Redis access (rate limiting).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// sessionMessagesKey returns the key for a session's message sorted set.
func sessionMessagesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// searchWordKey returns the key for a search word index.
func searchWordKey(word string) string {
	return fmt.Sprintf("search:words:%s", strings.ToLower(word))
}

// AppendMessage stores a message in the session's history.
func (s *RedisStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := sessionMessagesKey(msg.SessionID)

	err = s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	}).Err()
	if err != nil {
		return err
	}

	s.client.Expire(ctx, key, messageTTL)
	s.client.SAdd(ctx, sessionsKey, msg.SessionID)

	// Index for search. Best-effort: a failed index never fails the append.
	_ = s.indexMessage(ctx, msg)

	return nil
}

// SessionMessages retrieves messages from a session, newest first.
func (s *RedisStore) SessionMessages(ctx context.Context, sessionID string, limit int, before int64) ([]models.Message, error) {
	key := sessionMessagesKey(sessionID)

	var maxScore string
	if before > 0 {
		maxScore = fmt.Sprintf("(%d", before) // exclusive
	} else {
		maxScore = "+inf"
	}

	results, err := s.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   maxScore,
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// ClearSession drops a session's history and search references to it.
func (s *RedisStore) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionMessagesKey(sessionID)).Err(); err != nil {
		return err
	}
	return s.client.SRem(ctx, sessionsKey, sessionID).Err()
}

// ActiveSessions lists sessions that currently hold history.
func (s *RedisStore) ActiveSessions(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, sessionsKey).Result()
	if err != nil {
		return nil, err
	}

	// Histories expire; drop session ids whose sets are gone.
	active := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := s.client.Exists(ctx, sessionMessagesKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			active = append(active, id)
		} else {
			s.client.SRem(ctx, sessionsKey, id)
		}
	}
	return active, nil
}

// CountMessages sums message counts across all active sessions.
func (s *RedisStore) CountMessages(ctx context.Context) (int64, error) {
	ids, err := s.ActiveSessions(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, id := range ids {
		n, err := s.client.ZCard(ctx, sessionMessagesKey(id)).Result()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// RecentMessages returns the newest messages across all sessions.
func (s *RedisStore) RecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	ids, err := s.ActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	all := []models.Message{}
	for _, id := range ids {
		results, err := s.client.ZRevRange(ctx, sessionMessagesKey(id), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, err
		}
		for _, data := range results {
			var msg models.Message
			if err := json.Unmarshal([]byte(data), &msg); err != nil {
				continue
			}
			all = append(all, msg)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp > all[j].Timestamp
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// wordRegex matches word characters for search indexing.
var wordRegex = regexp.MustCompile(`\w+`)

// indexMessage indexes a message body for word search.
func (s *RedisStore) indexMessage(ctx context.Context, msg *models.Message) error {
	words := wordRegex.FindAllString(strings.ToLower(msg.Body), -1)

	seen := make(map[string]bool)
	for _, word := range words {
		if len(word) < 3 || seen[word] {
			continue
		}
		seen[word] = true

		key := searchWordKey(word)
		ref := fmt.Sprintf("%s:%s", msg.SessionID, msg.ID)

		s.client.ZAdd(ctx, key, redis.Z{
			Score:  float64(msg.Timestamp),
			Member: ref,
		})
		s.client.Expire(ctx, key, searchTTL)
	}

	return nil
}

// getMessage retrieves a specific message by ID.
func (s *RedisStore) getMessage(ctx context.Context, sessionID, msgID string) (*models.Message, error) {
	key := sessionMessagesKey(sessionID)

	results, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	for _, data := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		if msg.ID == msgID {
			return &msg, nil
		}
	}

	return nil, nil
}

// SearchMessages searches for messages containing all tokens, newest first.
func (s *RedisStore) SearchMessages(ctx context.Context, tokens []string, limit int, after int64, sessionFilter string) ([]models.Message, error) {
	if len(tokens) == 0 {
		return []models.Message{}, nil
	}

	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = searchWordKey(t)
	}

	var refs []string

	if len(keys) == 1 {
		minScore := "-inf"
		if after > 0 {
			minScore = fmt.Sprintf("(%d", after) // exclusive
		}

		refs, _ = s.client.ZRevRangeByScore(ctx, keys[0], &redis.ZRangeBy{
			Min:   minScore,
			Max:   "+inf",
			Count: int64(limit * 3), // Fetch extra for filtering
		}).Result()
	} else {
		tempKey := fmt.Sprintf("search:temp:%d", time.Now().UnixNano())

		s.client.ZInterStore(ctx, tempKey, &redis.ZStore{
			Keys:      keys,
			Aggregate: "MIN",
		})
		s.client.Expire(ctx, tempKey, 10*time.Second)

		minScore := "-inf"
		if after > 0 {
			minScore = fmt.Sprintf("(%d", after)
		}

		refs, _ = s.client.ZRevRangeByScore(ctx, tempKey, &redis.ZRangeBy{
			Min:   minScore,
			Max:   "+inf",
			Count: int64(limit * 3),
		}).Result()

		s.client.Del(ctx, tempKey)
	}

	messages := make([]models.Message, 0, limit)
	for _, ref := range refs {
		parts := strings.SplitN(ref, ":", 2)
		if len(parts) != 2 {
			continue
		}
		sessionID, msgID := parts[0], parts[1]

		if sessionFilter != "" && sessionID != sessionFilter {
			continue
		}

		msg, err := s.getMessage(ctx, sessionID, msgID)
		if err != nil || msg == nil {
			continue // Message expired
		}

		messages = append(messages, *msg)

		if len(messages) >= limit {
			break
		}
	}

	return messages, nil
}
