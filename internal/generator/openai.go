package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperengineering/cadence/internal/github"
	"github.com/hyperengineering/cadence/internal/quality"
	"github.com/hyperengineering/cadence/internal/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Generator = (*OpenAI)(nil)

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// RepoDescriber supplies repository context for repo-sourced selections.
// Optional; without one, repo prompts fall back to the bare repo name.
type RepoDescriber interface {
	FetchRepo(ctx context.Context, fullName string) (*github.Repo, error)
}

const systemPrompt = "You craft concise, credible professional social content."

const promptConstraints = `Follow these constraints for the post:
- Length: 120-200 words, under 1,300 characters.
- Tone: authoritative, conversational, insightful. First-person voice.
- Structure: hook, context and insights, unique perspective, closing question.
- Formatting: short paragraphs with line breaks; plain text only, no markdown.
- Hashtags: 3-5 unique hashtags at the very end.
- Keywords: naturally embed relevant domain keywords.`

// OpenAI generates drafts through an OpenAI-compatible chat completion API.
// A non-empty base URL redirects to any compatible provider.
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
	repos RepoDescriber
}

// NewOpenAI creates the chat-backed generator.
func NewOpenAI(apiKey, model, baseURL string, repos RepoDescriber) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAI{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
		repos: repos,
	}
}

// Name returns the generator name for logging.
func (o *OpenAI) Name() string {
	return "openai"
}

// Generate requests a draft for the selection and post-processes it into a
// scored Draft.
func (o *OpenAI) Generate(ctx context.Context, sel types.Selection) (*types.Draft, error) {
	userPrompt := o.buildPrompt(ctx, sel)

	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		}),
		Model:       openai.F(o.model),
		Temperature: openai.F(0.7),
		MaxTokens:   openai.F(int64(700)),
	})
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyDraft
	}

	return postprocess(resp.Choices[0].Message.Content), nil
}

// buildPrompt assembles the user prompt for a selection. Repo selections are
// grounded in fetched repository metadata when a describer is available.
func (o *OpenAI) buildPrompt(ctx context.Context, sel types.Selection) string {
	if sel.Source == types.SourceRepo && o.repos != nil {
		if repo, err := o.repos.FetchRepo(ctx, sel.Topic); err == nil {
			return fmt.Sprintf(
				"You are a software engineer sharing a project you just shipped.\n\n"+
					"Repo: %s\nDescription: %s\nLanguage: %s\nTopics: %s\nURL: %s\nAbout: %s\n\n"+
					"Explain the problem you tackled, your approach, and one core technical insight. "+
					"End by inviting readers to check out the repo.\n\n%s",
				repo.FullName, repo.Description, repo.Language,
				strings.Join(repo.Topics, ", "), repo.URL, repo.Readme,
				promptConstraints,
			)
		}
	}

	return fmt.Sprintf(
		"You are a recognized practitioner. Write a professional post about %s. "+
			"Focus on an emerging trend, a concrete use case, or a recent breakthrough. "+
			"Start with a strong hook, provide context, share a forward-looking insight, "+
			"and end with a question inviting discussion.\n\n%s",
		sel.Topic, promptConstraints,
	)
}

var (
	boldRE    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRE  = regexp.MustCompile(`\*([^*]+)\*`)
	headingRE = regexp.MustCompile(`(?m)^#+\s+`)
)

// postprocess strips markdown the model tends to emit despite instructions,
// derives a title from the first line, and scores the result.
func postprocess(raw string) *types.Draft {
	text := boldRE.ReplaceAllString(raw, "$1")
	text = italicRE.ReplaceAllString(text, "$1")
	text = headingRE.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	title := ""
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			title = line
			break
		}
	}

	hashtags := quality.Hashtags(text)
	if len(hashtags) > 5 {
		hashtags = hashtags[:5]
	}

	return &types.Draft{
		Title:        title,
		Body:         text,
		Hashtags:     hashtags,
		Keywords:     quality.Keywords(text, 12),
		QualityScore: quality.Score(text),
	}
}
