package server

import (
	"context"
	"fmt"
	"sync"

	"dual-dm/internal/config"
	"dual-dm/internal/db"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// introTrigger stands in for user input when a game is created: both
// narrators receive it with an empty history.
const introTrigger = "Begin the adventure. Set the opening scene and invite the player to act."

type narratorClient struct {
	client      *openai.Client
	fastModel   string
	smartModel  string
	temperature float32
	maxTokens   int
}

func newNarratorClient(cfg config.Config) *narratorClient {
	conf := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		conf.BaseURL = cfg.OpenAIBaseURL
	}
	return &narratorClient{
		client:      openai.NewClientWithConfig(conf),
		fastModel:   cfg.FastModel,
		smartModel:  cfg.SmartModel,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
}

func (n *narratorClient) modelFor(branch int) string {
	if branch == db.BranchSmart {
		return n.smartModel
	}
	return n.fastModel
}

// call submits one chat completion: the system prompt first, then the
// branch history with the stored role "model" rewritten to "assistant",
// then userInput last when it is non-empty. On turns userInput is empty
// because the user action is already the final history row.
func (n *narratorClient) call(ctx context.Context, branch int, systemPrompt string, history []db.Message, userInput string) (string, error) {
	model := n.modelFor(branch)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == db.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	if userInput != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: n.temperature,
		MaxTokens:   n.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// branchOutcome is the settled result of one narrator branch. A failed
// model call is substituted with placeholder text and never fails the
// turn; a failed message insert is a store error the handler must
// surface.
type branchOutcome struct {
	Branch   int
	Text     string
	Failed   bool
	storeErr error
}

func failurePlaceholder(err error) string {
	return fmt.Sprintf("(The DM stumbles: %v)", err)
}

// playBranch assembles the branch history, invokes the branch's backend
// and persists the settled result as a model message.
func (s *Server) playBranch(ctx context.Context, game *db.Game, branch int, trigger string) branchOutcome {
	outcome := branchOutcome{Branch: branch}
	history, err := db.BranchHistory(s.db, game.ID, branch)
	if err != nil {
		outcome.storeErr = err
		return outcome
	}
	text, err := s.narrator.call(ctx, branch, game.SystemPrompt, history, trigger)
	if err != nil {
		log.Errorf("narrator call failed game_id=%d branch=%d model=%s: %v",
			game.ID, branch, s.narrator.modelFor(branch), err)
		text = failurePlaceholder(err)
		outcome.Failed = true
	}
	outcome.Text = text
	if _, err := db.AppendMessage(s.db, game.ID, branch, db.RoleModel, text); err != nil {
		outcome.storeErr = err
	}
	return outcome
}

// playBothBranches runs both narrator branches concurrently and waits
// for both to settle. Each branch persists its own reply as soon as its
// call settles; neither branch's failure affects the other.
func (s *Server) playBothBranches(ctx context.Context, game *db.Game, trigger string) (branchOutcome, branchOutcome) {
	var fast, smart branchOutcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		fast = s.playBranch(ctx, game, db.BranchFast, trigger)
	}()
	go func() {
		defer wg.Done()
		smart = s.playBranch(ctx, game, db.BranchSmart, trigger)
	}()
	wg.Wait()
	return fast, smart
}
