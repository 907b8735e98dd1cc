package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackDataPrefersUnique(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Unique: "quiz_answer", Data: "len"})
	assert.Equal(t, "quiz_answer", unique)
	assert.Equal(t, "len", payload)
}

func TestParseCallbackDataDecodesRawEncoding(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\fquiz_answer|len"})
	assert.Equal(t, "quiz_answer", unique)
	assert.Equal(t, "len", payload)
}

func TestParseCallbackDataWithoutPayload(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\fquiz_end"})
	assert.Equal(t, "quiz_end", unique)
	assert.Empty(t, payload)
}

func TestParseCallbackDataKeepsPayloadSeparators(t *testing.T) {
	// Only the first separator splits; answers may contain pipes.
	_, payload := ParseCallbackData(&tele.Callback{Data: "\fquiz_answer|a|b"})
	assert.Equal(t, "a|b", payload)
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	assert.Empty(t, unique)
	assert.Empty(t, payload)
}
