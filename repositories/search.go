package repositories

import (
	"alumnet/domain"
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// MessageIndex maintains a full-text index over persisted messages. Updates
// arrive over the best-effort fan-out, so the index may trail the store by a
// hop; search results are advisory and always re-read from Badger by id.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (x *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content)).
		AddField(bluge.NewKeywordField("pair", domain.PairKey(message.SenderID, message.RecipientID))).
		AddField(bluge.NewDateTimeField("created_at", message.CreatedAt))
	return x.writer.Update(doc.ID(), doc)
}

// Search returns the ids of messages in the pair's conversation matching the
// query, best first.
func (x *MessageIndex) Search(ctx context.Context, a, b uuid.UUID, query string, limit int) ([]uuid.UUID, error) {
	reader, err := x.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(domain.PairKey(a, b)).SetField("pair"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		if err := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				} else {
					x.log.Warn("skipping malformed document id", "id", string(value))
				}
			}
			return true
		}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
