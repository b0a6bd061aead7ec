package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopClient struct{ name string }

func (n nopClient) AnswerQuestion(context.Context, string, string, Options) (string, error) {
	return n.name, nil
}

func (n nopClient) Respond(context.Context, string, []Tool, Options) (string, error) {
	return n.name, nil
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(FactoryConfig{Provider: "no-such-provider"})
	assert.ErrorContains(t, err, "not registered")
}

func TestRegisterProviderAliases(t *testing.T) {
	RegisterProvider("factory-test", func(FactoryConfig) (Client, error) {
		return nopClient{name: "factory-test"}, nil
	}, "factory-alias")

	for _, name := range []string{"factory-test", "Factory-Test", "factory-alias", "FACTORY-ALIAS"} {
		client, err := NewClient(FactoryConfig{Provider: name})
		require.NoError(t, err, name)
		reply, err := client.Respond(context.Background(), "", nil, Options{})
		require.NoError(t, err)
		assert.Equal(t, "factory-test", reply, "lookup is case insensitive")
	}

	assert.Contains(t, RegisteredProviders(), "factory-test")
	assert.Contains(t, RegisteredProviders(), "factory-alias")
}

func TestResolveModelName(t *testing.T) {
	assert.Equal(t, "custom-model", ResolveModelName("gemini", "custom-model"))
	assert.Equal(t, "gemini-1.5-flash", ResolveModelName("gemini", ""))
	assert.Equal(t, "gpt-4o-mini", ResolveModelName("OpenAI", " "))
	assert.Equal(t, "unknown", ResolveModelName("mystery", ""))
}
