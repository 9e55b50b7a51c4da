package command

import (
	"context"
	"time"

	"booklease/cmd/booklease/authentication"
	"booklease/cmd/booklease/client"
)

const commandTimeout = 15 * time.Second

// publicClient is for routes that need no token.
func publicClient() *client.HTTPClient {
	return client.NewHTTPClient(apiURL)
}

// sessionClient attaches the stored token. A session saved against another
// server is still used for that server unless --api was passed.
func sessionClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}
	base := apiURL
	if !rootCmd.PersistentFlags().Changed("api") && creds.APIURL != "" {
		base = creds.APIURL
	}
	c := client.NewHTTPClient(base)
	c.SetToken(creds.Token)
	return c, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
