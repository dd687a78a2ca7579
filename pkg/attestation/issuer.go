// Package attestation issues and revokes onchain-style attestations
// through an external attestation service. Issuing an attestation is an
// irreversible external effect and must always go through
// pkg/effectguard.
package attestation

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/sha3"
)

// Attestation is the result of issuing an attestation.
type Attestation struct {
	UID       string    `json:"uid"`
	Schema    string    `json:"schema"`
	Recipient string    `json:"recipient"`
	TxHash    string    `json:"tx_hash,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Request describes an attestation to issue.
type Request struct {
	Schema    string            `json:"schema"`
	Recipient string            `json:"recipient"`
	Data      map[string]string `json:"data,omitempty"`
}

// Revocation reports a completed attestation revocation.
type Revocation struct {
	UID       string    `json:"uid"`
	RevokedAt time.Time `json:"revoked_at"`
}

// Issuer is a client for the external attestation service.
type Issuer struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewIssuer creates an attestation issuer against the given endpoint.
func NewIssuer(endpoint, apiKey string) *Issuer {
	return &Issuer{
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Issue submits the attestation for onchain issuance. The returned UID
// and transaction hash come from the attestation service.
func (i *Issuer) Issue(ctx context.Context, req Request) (Attestation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Attestation{}, fmt.Errorf("failed to encode attestation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint+"/attestations", bytes.NewReader(body))
	if err != nil {
		return Attestation{}, fmt.Errorf("failed to build attestation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+i.apiKey)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return Attestation{}, fmt.Errorf("attestation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Attestation{}, fmt.Errorf("attestation service returned status %d", resp.StatusCode)
	}

	var att Attestation
	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return Attestation{}, fmt.Errorf("failed to decode attestation response: %w", err)
	}
	return att, nil
}

// Revoke revokes a previously issued attestation by UID.
func (i *Issuer) Revoke(ctx context.Context, uid string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, i.endpoint+"/attestations/"+uid, nil)
	if err != nil {
		return fmt.Errorf("failed to build revocation request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+i.apiKey)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("revocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("attestation service returned status %d", resp.StatusCode)
	}
	return nil
}

// DeriveUID computes the deterministic keccak256 identifier for an
// attestation, matching the onchain UID derivation.
func DeriveUID(schema, recipient string, issuedAt time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(schema))
	h.Write([]byte(recipient))
	h.Write([]byte(issuedAt.UTC().Format(time.RFC3339)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// MockRevocation builds the deterministic mock value handed to the
// effect guard for revocations performed under impersonation.
func MockRevocation(uid string, at time.Time) Revocation {
	return Revocation{
		UID:       uid,
		RevokedAt: at.UTC(),
	}
}

// MockAttestation builds the deterministic mock value handed to the
// effect guard: same shape as a real attestation, locally derived UID,
// no transaction hash.
func MockAttestation(req Request, at time.Time) Attestation {
	return Attestation{
		UID:       DeriveUID(req.Schema, req.Recipient, at),
		Schema:    req.Schema,
		Recipient: req.Recipient,
		IssuedAt:  at.UTC(),
	}
}
