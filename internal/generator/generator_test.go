package generator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-cai/internal/config"
)

// fakeProvider records the last call and replies with a canned message.
type fakeProvider struct {
	reply        string
	err          error
	systemPrompt string
	content      string
	closed       bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	f.systemPrompt = systemPrompt
	f.content = content
	return f.reply, f.err
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Default:  "openai",
		Language: "en",
		Style:    "professional",
		Emoji:    config.EmojiOn,
		Providers: map[string]config.Provider{
			"openai": {Model: "gpt-5.2", Temperature: 0},
		},
	}
}

func TestCommitMessagePromptAssembly(t *testing.T) {
	fake := &fakeProvider{reply: "feat: add executable bit handling"}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	diff := "diff --git a/run.sh b/run.sh\nold mode 100644\nnew mode 100755\n"
	got, err := gen.CommitMessage(context.Background(), diff)
	require.NoError(t, err)
	assert.Equal(t, "feat: add executable bit handling", got)

	assert.Equal(t, diff, fake.content)
	assert.Contains(t, fake.systemPrompt, "Write the commit message in English.")
	assert.Contains(t, fake.systemPrompt, "tone style: professional.")
	assert.Contains(t, fake.systemPrompt, "Use relevant emojis")
}

func TestCommitMessageTrimsReply(t *testing.T) {
	fake := &fakeProvider{reply: "  \n fix: trim whitespace \n\n"}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	got, err := gen.CommitMessage(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, "fix: trim whitespace", got)
}

func TestCommitMessageEmptyReplyIsError(t *testing.T) {
	fake := &fakeProvider{reply: "  \n "}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	_, err := gen.CommitMessage(context.Background(), "diff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty commit message from fake")
}

func TestCommitMessageProviderErrorPassesThrough(t *testing.T) {
	fake := &fakeProvider{err: assert.AnError}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	_, err := gen.CommitMessage(context.Background(), "diff")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSummarizeHistoryUsesSquashPrompt(t *testing.T) {
	fake := &fakeProvider{reply: "feat: rework config loading"}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	log := "fix config\nfix config again\nreally fix config"
	got, err := gen.SummarizeHistory(context.Background(), log)
	require.NoError(t, err)
	assert.Equal(t, "feat: rework config loading", got)

	assert.Equal(t, log, fake.content)
	assert.Contains(t, fake.systemPrompt, "summarize multiple existing commit messages")
}

func TestCommitMessageLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	fake := &fakeProvider{reply: "msg"}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), logger)

	_, err := gen.CommitMessage(context.Background(), "diff")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "generating commit message"))
}

func TestCloseReleasesProvider(t *testing.T) {
	fake := &fakeProvider{}
	gen := NewWithProvider(testConfig(), fake, t.TempDir(), zerolog.Nop())

	require.NoError(t, gen.Close())
	assert.True(t, fake.closed)
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"plain message":                          "plain message",
		"  padded  ":                             "padded",
		"<think>reasoning</think>answer":         "answer",
		"<think>a</think><think>b</think>final":  "final",
		"prefix<think>trace\nmore</think> tail":  "tail",
		"leftover </think>real":                  "real",
		"<think>only a trace</think>":            "",
		"no tags at all\nwith a second line":     "no tags at all\nwith a second line",
		"<think>open inside <think>x</think>out": "out",
	}
	for input, want := range cases {
		assert.Equal(t, want, Clean(input), "input %q", input)
	}
}
