package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login exchanges email and password for a credential pair
func (c *Client) Login(ctx context.Context, email, password string) (core.CredentialPair, error) {
	var body core.Response[core.Tokens]
	err := c.Execute(ctx, nil, ports.Request{
		Method: http.MethodPost,
		Path:   core.PathLogin,
		Body:   loginRequest{Email: email, Password: password},
	}, "", &body)
	if err != nil {
		return core.CredentialPair{}, err
	}

	pair := body.Data.Pair()
	if !pair.Complete() {
		return core.CredentialPair{}, core.ErrUnexpectedBody
	}

	return pair, nil
}

// Register creates an account and returns the registered email
func (c *Client) Register(ctx context.Context, email, password, confirmPassword string) (string, error) {
	var body core.Response[core.Registration]
	err := c.Execute(ctx, nil, ports.Request{
		Method: http.MethodPost,
		Path:   core.PathRegister,
		Body:   registerRequest{Email: email, Password: password, ConfirmPassword: confirmPassword},
	}, "", &body)
	if err != nil {
		return "", err
	}

	if body.Data.Email == "" {
		return "", core.ErrUnexpectedBody
	}

	return body.Data.Email, nil
}

// RequestPasswordReset asks the API to mail a reset link
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.postExpectingData(ctx, core.PathResetRequest, resetRequestRequest{Email: email})
}

// ResetPassword sets a new password using a mailed reset token
func (c *Client) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	return c.postExpectingData(ctx, core.PathReset, resetRequest{
		Token:           token,
		Password:        password,
		ConfirmPassword: confirmPassword,
	})
}

// StudyPrograms lists the selectable study programs
func (c *Client) StudyPrograms(ctx context.Context) ([]core.StudyProgram, error) {
	var body core.Response[[]core.StudyProgram]
	if err := c.Execute(ctx, nil, ports.Request{Path: core.PathStudyPrograms}, "", &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// Health checks that the API answers
func (c *Client) Health(ctx context.Context) error {
	return c.Execute(ctx, nil, ports.Request{Path: core.PathHealth}, "", nil)
}

func (c *Client) postExpectingData(ctx context.Context, path string, payload any) error {
	var body core.Response[json.RawMessage]
	err := c.Execute(ctx, nil, ports.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   payload,
	}, "", &body)
	if err != nil {
		return err
	}

	if len(body.Data) == 0 || string(body.Data) == "null" {
		return core.ErrUnexpectedBody
	}

	return nil
}
