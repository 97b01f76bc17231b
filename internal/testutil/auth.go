package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/rs/zerolog/log"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword returns a 12 character password that satisfies the
// Authorizer's default policy.
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 12)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]
	password[3] = lower[randInt(len(lower))]
	for i := 4; i < len(password); i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}

// AcquireAccount signs a user up (an existing account is reused) and logs
// in, returning the access token.
func AcquireAccount(authzURL, clientID, email, password string, roles []string) (string, error) {
	client, err := authorizer.NewAuthorizerClient(clientID, authzURL, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create authorizer client: %w", err)
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	if _, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           rolesPtrs,
	}); err != nil {
		log.Debug().Err(err).Str("email", email).Msg("signup failed, trying login")
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if res.AccessToken == nil {
		return "", fmt.Errorf("login for %s returned no access token", email)
	}
	return *res.AccessToken, nil
}
