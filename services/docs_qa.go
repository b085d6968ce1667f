package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tlcdata/ai-agent/models"
)

const docsSystemPrompt = "You answer strictly from the CONTEXT below, which holds excerpts of company files. " +
	"If the answer is not clear from the context, say there is not enough evidence. Be objective."

// steeringFileName is the sentinel key suffix whose content augments
// the system prompt instead of being answerable context. The name is a
// deployed-corpus constant and must not change.
const steeringFileName = "contextualizacao.txt"

var supportedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".md": true,
}

// DocsQAService answers questions from a document corpus in object
// storage: it enumerates the corpus, assembles a character-budgeted
// context bundle and asks the gateway to answer only from it.
type DocsQAService struct {
	chat     ChatClient
	model    string
	store    ObjectStore
	bucket   string
	prefix   string
	maxChars int
}

func NewDocsQAService(chat ChatClient, model string, store ObjectStore, bucket, prefix string, maxChars int) *DocsQAService {
	return &DocsQAService{chat: chat, model: model, store: store, bucket: bucket, prefix: prefix, maxChars: maxChars}
}

func (s *DocsQAService) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	fail := func(message string) models.AnswerEnvelope {
		return models.AnswerEnvelope{Intent: models.IntentDocs, Error: message}
	}

	if s.bucket == "" {
		return fail("BUCKET_NAME is not configured")
	}
	if s.prefix == "" {
		return fail("COMPANY_FILES_PREFIX is not configured")
	}

	keys, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return fail(fmt.Sprintf("could not list document corpus: %v", err))
	}

	steering, steeringKey := s.loadSteering(ctx, keys)
	files, body := s.assembleContext(ctx, keys, steeringKey)
	if body == "" {
		return fail("no valid files found or unreadable")
	}

	system := docsSystemPrompt
	if steering != "" {
		system = strings.TrimSpace(steering) + "\n\n" + docsSystemPrompt
	}
	user := fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s\n\nAnswer strictly from the CONTEXT.", body, question)

	result := s.chat.Chat(ctx, s.model, system, user, ChatOptions{})
	if !result.OK {
		return fail(result.Err)
	}

	return models.AnswerEnvelope{OK: true, Intent: models.IntentDocs, Files: files, Answer: result.Content}
}

// loadSteering finds the first key matching the sentinel suffix,
// case-insensitively, and reads it as plain text. A read failure still
// returns the key so the file stays out of the answerable corpus.
func (s *DocsQAService) loadSteering(ctx context.Context, keys []string) (string, string) {
	for _, key := range keys {
		if !strings.HasSuffix(strings.ToLower(key), steeringFileName) {
			continue
		}
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			return "", key
		}
		return decodePlainText(raw), key
	}
	return "", ""
}

// assembleContext fetches files in listing order, one at a time, and
// stops as soon as the accumulated length reaches the budget. The last
// block can push the total slightly over before the hard slice below;
// the returned body never exceeds maxChars. files holds only keys
// whose extraction yielded non-empty text.
func (s *DocsQAService) assembleContext(ctx context.Context, keys []string, steeringKey string) ([]string, string) {
	var blocks []string
	var files []string
	total := 0

	for _, key := range keys {
		if key == steeringKey {
			continue
		}
		if !supportedExtensions[strings.ToLower(path.Ext(key))] {
			continue
		}

		raw, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		text := ExtractText(key, raw)
		if text == "" {
			continue
		}

		block := fmt.Sprintf("\n[FILE: %s]\n%s\n", key, text)
		blocks = append(blocks, block)
		files = append(files, key)
		total += len(block) + 1
		if total >= s.maxChars {
			break
		}
	}

	body := strings.Join(blocks, "\n")
	if len(body) > s.maxChars {
		body = body[:s.maxChars]
	}
	return files, body
}
