package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestInlineRowsLayout(t *testing.T) {
	markup := InlineRows(
		[]InlineBtn{
			{Text: "Easy", Unique: "mode_pick", Data: "easy"},
			{Text: "Hard", Unique: "mode_pick", Data: "hard"},
		},
		[]InlineBtn{{Text: "Back", Unique: "menu"}},
	)

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	require.Len(t, markup.InlineKeyboard[1], 1)

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Easy", first.Text)
	assert.Equal(t, "mode_pick", first.Unique)
	assert.Equal(t, "easy", first.Data)
}

func TestInlineColumnOneButtonPerRow(t *testing.T) {
	markup := InlineColumn(
		InlineBtn{Text: "Functions", Unique: "topic_pick", Data: "func"},
		InlineBtn{Text: "Expressions", Unique: "topic_pick", Data: "expr"},
	)

	require.Len(t, markup.InlineKeyboard, 2)
	for _, row := range markup.InlineKeyboard {
		assert.Len(t, row, 1)
	}
}

func TestReplyButtonsLayout(t *testing.T) {
	markup := ReplyButtons(
		[]string{"Menu", "Quiz"},
		[]string{"Roll the dice"},
	)

	require.Len(t, markup.ReplyKeyboard, 2)
	assert.True(t, markup.ResizeKeyboard)
	assert.Equal(t, "Menu", markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "Roll the dice", markup.ReplyKeyboard[1][0].Text)
}

func TestRegistryDispatchTables(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/quiz", Command{
		Handler:     func(c tele.Context) error { return nil },
		Description: "Start a quiz",
	})
	reg.RegisterAction("Quiz", func(c tele.Context) error { return nil })
	reg.RegisterCallback("quiz_answer", func(c tele.Context) error { return nil })

	_, ok := reg.LookupAction("Quiz")
	assert.True(t, ok)
	_, ok = reg.GetCallback("quiz_answer")
	assert.True(t, ok)
	_, ok = reg.GetCallback("missing")
	assert.False(t, ok)

	cmds := reg.ListCommands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "/quiz", cmds[0].Text)
	assert.Equal(t, "Start a quiz", cmds[0].Description)
}
