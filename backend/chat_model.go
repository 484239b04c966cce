package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type ChatModelConfig struct {
	UpstreamURL string
	APIKey      string
	HTTPClient  *http.Client
	// Instruction is the base system instruction; system messages in the
	// input are appended to it.
	Instruction string
}

// ChatModel adapts the generateContent Client to an Eino chat model so the
// relay backend can also be driven from Eino graphs.
type ChatModel struct {
	config ChatModelConfig
	client *Client
}

func NewChatModel(config ChatModelConfig) (*ChatModel, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client, err := NewClient(ClientConfig{
		UpstreamURL: config.UpstreamURL,
		HTTPClient:  config.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &ChatModel{config: config, client: client}, nil
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	contents, instruction, err := buildContents(input, m.config.Instruction)
	if err != nil {
		return nil, err
	}
	result, err := m.client.Generate(ctx, m.config.APIKey, contents, instruction)
	if err != nil {
		return nil, err
	}
	if result.Text == "" && result.BlockReason != "" {
		return nil, fmt.Errorf("generation blocked: %s", result.BlockReason)
	}
	return schema.AssistantMessage(result.Text, nil), nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](1)
	go func() {
		defer sw.Close()
		msg, err := m.Generate(ctx, input)
		if err != nil {
			sw.Send(nil, err)
			return
		}
		sw.Send(msg, nil)
	}()
	return sr, nil
}

// WithTools is required by the ToolCallingChatModel interface; the
// generateContent relay does not forward tool declarations.
func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (einoModel.ToolCallingChatModel, error) {
	return nil, fmt.Errorf("tools are not supported")
}

func buildContents(input []*schema.Message, instruction string) ([]Content, string, error) {
	instruction = strings.TrimSpace(instruction)
	contents := make([]Content, 0, len(input))

	for _, msg := range input {
		if msg == nil {
			continue
		}
		if msg.Role == schema.System {
			if msg.Content != "" {
				if instruction == "" {
					instruction = msg.Content
				} else {
					instruction = instruction + "\n\n" + msg.Content
				}
			}
			continue
		}

		role := "user"
		if msg.Role == schema.Assistant {
			// generateContent calls the assistant side "model".
			role = "model"
		}
		if msg.Content == "" {
			continue
		}
		contents = append(contents, Content{Role: role, Parts: []Part{{Text: msg.Content}}})
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("no valid messages to send")
	}
	return contents, instruction, nil
}
