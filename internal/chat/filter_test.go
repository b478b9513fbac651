package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterMessageAccepts(t *testing.T) {
	for _, text := range []string{
		"adorei, vamos combinar por aqui mesmo",
		"a casa fica perto da praia?",
		"chego sexta as 18h",
		"o valor com taxa ficou 960",
	} {
		require.NoError(t, FilterMessage(text), text)
	}
}

func TestFilterMessageRejectsEmail(t *testing.T) {
	require.Error(t, FilterMessage("me escreve em joao@gmail.com"))
}

func TestFilterMessageRejectsDigitRun(t *testing.T) {
	require.Error(t, FilterMessage("me liga no 99887766"))
	require.NoError(t, FilterMessage("o apartamento 1203 no bloco 4"))
}

func TestFilterMessageRejectsURL(t *testing.T) {
	require.Error(t, FilterMessage("olha esse link https://example.com/casa"))
	require.Error(t, FilterMessage("acessa www.minhacasa.com"))
}

func TestFilterMessageRejectsContactKeywords(t *testing.T) {
	for _, text := range []string{
		"me chama no WhatsApp",
		"manda no zap",
		"prefiro resolver por Pix direto",
		"meu instagram é fulano",
		"qual seu telefone?",
	} {
		require.Error(t, FilterMessage(text), text)
	}
}

func TestFilterMessageRejectsTooLong(t *testing.T) {
	require.NoError(t, FilterMessage(strings.Repeat("a", 1000)))
	require.Error(t, FilterMessage(strings.Repeat("a", 1001)))
}

func TestFilterMessageRejectsEmpty(t *testing.T) {
	require.Error(t, FilterMessage(""))
	require.Error(t, FilterMessage("   "))
}
