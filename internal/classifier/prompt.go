package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// SystemInstruction primes the model for Indian fraud patterns and pins the
// JSON answer shape parseResponse expects.
const SystemInstruction = `You are an expert fraud and scam analyst specializing in Indian scams and cybercrime.
You analyze suspicious messages, phone numbers, UPI IDs, websites and emails and decide whether they are part of a scam.

You know the common Indian scam patterns, including:
- UPI fraud (fake refund requests, QR code scams, collect requests)
- KYC update scams (fake bank, Paytm or PhonePe KYC messages)
- OTP theft through social engineering
- fake job and work-from-home offers
- lottery and prize scams
- loan approval scams
- customs and courier parcel scams
- digital arrest scams (fake police, CBI or narcotics threats)
- investment, trading and crypto scams
- sextortion and blackmail
- fake customer care numbers
- SIM swap fraud
- Aadhaar and PAN card misuse threats

Respond ONLY with a JSON object in exactly this format:
{
  "is_scam": true or false,
  "confidence": number between 0.0 and 1.0,
  "scam_type": "category name",
  "explanation": "why this is or is not a scam",
  "advice": "what the person should do"
}`

// BuildPrompt renders the user prompt for one request.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Analyze the following for potential scam/fraud:\n\n")
	if req.IdentifierType != "" && req.IdentifierValue != "" {
		fmt.Fprintf(&b, "Identifier Type: %s\n", req.IdentifierType)
		fmt.Fprintf(&b, "Identifier Value: %s\n\n", req.IdentifierValue)
	}
	b.WriteString("Content/Description:\n")
	b.WriteString(req.Text)
	return b.String()
}

// parseResponse decodes the model answer, tolerating markdown code fences.
func parseResponse(text string) (*Result, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var result Result
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	if math.IsNaN(result.Confidence) || result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence %v outside [0,1]", result.Confidence)
	}

	if result.ScamType == "" {
		result.ScamType = "unknown"
	}

	return &result, nil
}
