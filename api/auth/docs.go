// Package auth registers the generated OpenAPI description of the
// authentication service with the swag runtime so /swagger/ can serve it.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Meridian Platform Team",
            "url": "https://github.com/meridianapps/meridian"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version"}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "service not ready"}
                }
            }
        },
        "/v1/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "responses": {
                    "200": {"description": "access and refresh tokens"},
                    "401": {"description": "invalid credentials"},
                    "403": {"description": "second factor required (X-2FA-Required, X-User-ID headers)"}
                }
            }
        },
        "/v1/mfa/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["MFA"],
                "summary": "Complete the second factor of a login",
                "responses": {
                    "200": {"description": "access and refresh tokens"},
                    "401": {"description": "invalid code, too many attempts, or no active challenge"}
                }
            }
        },
        "/v1/mfa/totp/enroll": {
            "post": {
                "produces": ["application/json"],
                "tags": ["MFA"],
                "summary": "Enroll in TOTP MFA",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "TOTP secret and provisioning URL"},
                    "400": {"description": "MFA already enabled"},
                    "401": {"description": "invalid or missing access token"}
                }
            }
        },
        "/v1/mfa/totp/activate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["MFA"],
                "summary": "Activate TOTP MFA",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "single-use backup codes"},
                    "400": {"description": "invalid code or not enrolled"},
                    "401": {"description": "invalid or missing access token"}
                }
            }
        },
        "/v1/mfa": {
            "delete": {
                "tags": ["MFA"],
                "summary": "Disable MFA",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "MFA disabled"},
                    "401": {"description": "invalid or missing access token"}
                }
            }
        },
        "/v1/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Signup"],
                "summary": "Create a workspace and its first user",
                "responses": {
                    "201": {"description": "created ids"},
                    "400": {"description": "validation failure"},
                    "409": {"description": "email or workspace URL taken"}
                }
            }
        },
        "/v1/token/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "rotated tokens"},
                    "401": {"description": "invalid refresh token"}
                }
            }
        },
        "/v1/logout": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign out",
                "responses": {
                    "204": {"description": "token revoked"}
                }
            }
        },
        "/v1/password-reset/request": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["PasswordReset"],
                "summary": "Request a password reset email",
                "responses": {
                    "202": {"description": "reset email queued if the account exists"},
                    "400": {"description": "malformed request"}
                }
            }
        },
        "/v1/password-reset/validate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["PasswordReset"],
                "summary": "Check a reset token",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "token is valid"},
                    "401": {"description": "invalid or expired token"}
                }
            }
        },
        "/v1/password-reset/confirm": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["PasswordReset"],
                "summary": "Set a new password",
                "responses": {
                    "204": {"description": "password updated"},
                    "400": {"description": "weak password"},
                    "401": {"description": "invalid or expired token"}
                }
            }
        },
        "/v1/verify-email/validate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["EmailVerification"],
                "summary": "Check a verification token",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "token is valid"},
                    "401": {"description": "invalid or expired token"}
                }
            }
        },
        "/v1/verify-email/confirm": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["EmailVerification"],
                "summary": "Confirm an email address",
                "responses": {
                    "204": {"description": "email verified"},
                    "401": {"description": "invalid or expired token"}
                }
            }
        },
        "/v1/verify-email/resend": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["EmailVerification"],
                "summary": "Resend the verification email",
                "responses": {
                    "202": {"description": "verification email queued"},
                    "409": {"description": "email already verified"},
                    "429": {"description": "resend cooldown active"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT access token. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Meridian Authentication Service API",
	Description:      "Authentication backend for the Meridian admin application.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
