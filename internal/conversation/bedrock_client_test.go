package conversation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	captured *bedrockruntime.ConverseInput
	out      *bedrockruntime.ConverseOutput
	err      error
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.captured = params
	return f.out, f.err
}

func TestBedrockCompleteBuildsConverseInput(t *testing.T) {
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: "hello"}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(120), OutputTokens: aws.Int32(8), TotalTokens: aws.Int32(128)},
	}}
	client := NewBedrockLLMClient(fake)

	resp, err := client.Complete(context.Background(), LLMRequest{
		Model:       "anthropic.claude-3-5-sonnet-20241022-v2:0",
		System:      []string{"You are Lucy"},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
		Tools:       ToolSpecs(),
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	require.NotNil(t, fake.captured)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", aws.ToString(fake.captured.ModelId))
	require.Len(t, fake.captured.System, 1)
	require.Len(t, fake.captured.Messages, 1)
	require.NotNil(t, fake.captured.InferenceConfig)
	assert.Equal(t, int32(1024), aws.ToInt32(fake.captured.InferenceConfig.MaxTokens))
	require.NotNil(t, fake.captured.ToolConfig)
	assert.Len(t, fake.captured.ToolConfig.Tools, 8)

	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "hello", resp.Blocks[0].Text)
	assert.Equal(t, string(brtypes.StopReasonEndTurn), resp.StopReason)
	assert.Equal(t, int32(120), resp.Usage.InputTokens)
	assert.Equal(t, int32(128), resp.Usage.TotalTokens)
}

func TestBedrockCompleteDecodesToolUse(t *testing.T) {
	input := map[string]any{"maid_name": "Fatima", "preferred_date": "2026-09-02T15:00:00Z"}
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role: brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: "Scheduling now."},
				&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
					ToolUseId: aws.String("toolu_01"),
					Name:      aws.String("schedule_video_interview"),
					Input:     document.NewLazyDocument(input),
				}},
			},
		}},
		StopReason: brtypes.StopReasonToolUse,
	}}
	client := NewBedrockLLMClient(fake)

	resp, err := client.Complete(context.Background(), LLMRequest{
		Model:    "anthropic.claude-3-5-sonnet-20241022-v2:0",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "interview with Fatima"}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Blocks, 2)
	assert.Equal(t, "Scheduling now.", resp.Blocks[0].Text)

	use := resp.Blocks[1].ToolUse
	require.NotNil(t, use)
	assert.Equal(t, "toolu_01", use.ID)
	assert.Equal(t, "schedule_video_interview", use.Name)

	var decoded ScheduleInterviewInput
	require.NoError(t, json.Unmarshal(use.Input, &decoded))
	assert.Equal(t, "Fatima", decoded.MaidName)
	assert.Equal(t, "2026-09-02T15:00:00Z", decoded.PreferredDate)
}

func TestBedrockCompleteRequiresModel(t *testing.T) {
	client := NewBedrockLLMClient(&fakeConverse{})
	_, err := client.Complete(context.Background(), LLMRequest{})
	assert.Error(t, err)
}
