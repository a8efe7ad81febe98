package risk

// DefaultPolicyVersion identifies the built-in policy below.
// configs/scoring_policy.yml carries the same constants.
const DefaultPolicyVersion = "2024.1"

// DefaultPolicy returns the built-in scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		Version: DefaultPolicyVersion,
		Weights: Weights{
			Keyword:   0.30,
			Pattern:   0.25,
			Frequency: 0.20,
			AI:        0.25,
		},
		Keywords:           defaultKeywords(),
		KeywordSaturation:  5,
		FrequencyIncrement: 20,
		AINotableThreshold: 0.5,
		Phone: PhoneRules{
			SpamPrefixes:     []string{"140"},
			SpamPrefixPoints: 60,
			HomeCountryCode:  91,
			ForeignPoints:    30,
		},
		UPI: UPIRules{
			ImpersonationTerms: []string{
				"paytm", "rbi", "sbi", "refund", "lucky", "winner",
				"support", "helpdesk", "cashback", "kyc",
			},
			ImpersonationPoints:   50,
			NumericOnlyPoints:     25,
			RandomHandleMinLength: 10,
			RandomHandlePoints:    25,
			KnownProviders: []string{
				"ybl", "ibl", "axl", "apl", "upi", "paytm", "okaxis", "okhdfcbank",
				"okicici", "oksbi", "sbi", "hdfcbank", "icici", "axisbank", "kotak",
				"yesbank", "pnb", "barodampay", "freecharge", "jupiteraxis",
			},
			UnknownProviderPoints: 20,
			MalformedPoints:       30,
		},
		Website: WebsiteRules{
			SuspiciousTLDs: []string{
				".xyz", ".top", ".buzz", ".club", ".icu", ".tk", ".ml", ".ga", ".cf", ".gq",
			},
			SuspiciousTLDPoints: 40,
			Shorteners: []string{
				"bit.ly", "tinyurl.com", "t.co", "goo.gl", "is.gd", "rebrand.ly", "cutt.ly",
			},
			ShortenerPoints: 30,
			IPHostPoints:    40,
			PunycodePoints:  30,
			Brands: []BrandDomain{
				{Brand: "sbi", Official: []string{"sbi.co.in", "onlinesbi.sbi", "sbi"}},
				{Brand: "hdfc", Official: []string{"hdfcbank.com", "hdfc.com"}},
				{Brand: "icici", Official: []string{"icicibank.com", "icici.com"}},
				{Brand: "paytm", Official: []string{"paytm.com", "paytmbank.com"}},
				{Brand: "phonepe", Official: []string{"phonepe.com"}},
				{Brand: "rbi", Official: []string{"rbi.org.in"}},
				{Brand: "amazon", Official: []string{"amazon.in", "amazon.com"}},
				{Brand: "incometax", Official: []string{"incometax.gov.in"}},
			},
			BrandImpersonationPoints: 40,
		},
		Email: EmailRules{
			DisposableDomains: []string{
				"mailinator.com", "guerrillamail.com", "10minutemail.com", "tempmail.com",
				"temp-mail.org", "yopmail.com", "trashmail.com", "sharklasers.com",
				"getnada.com", "dispostable.com",
			},
			DisposablePoints: 50,
			FreeProviders: []string{
				"gmail.com", "yahoo.com", "yahoo.co.in", "hotmail.com", "outlook.com",
				"rediffmail.com",
			},
			OfficialTerms: []string{
				"bank", "sbi", "hdfc", "icici", "rbi", "govt", "gov", "police", "cbi",
				"customs", "incometax",
			},
			OfficialOnFreePoints: 60,
			SuspiciousTLDPoints:  30,
			MalformedPoints:      30,
		},
	}
}

func defaultKeywords() []Keyword {
	return []Keyword{
		{Term: "otp", Label: "OTP"},
		{Term: "kyc", Label: "KYC"},
		{Term: "aadhaar", Label: "Aadhaar"},
		{Term: "aadhar", Label: "Aadhaar"},
		{Term: "pan card", Label: "PAN card"},
		{Term: "lottery", Label: "Lottery"},
		{Term: "prize", Label: "Prize"},
		{Term: "winner", Label: "Winner"},
		{Term: "congratulations", Label: "Congratulations"},
		{Term: "urgent", Label: "Urgent"},
		{Term: "verify", Label: "Verify"},
		{Term: "suspend", Label: "Suspend"},
		{Term: "blocked", Label: "Blocked"},
		{Term: "click here", Label: "Click here"},
		{Term: "lakh", Label: "Lakh"},
		{Term: "crore", Label: "Crore"},
		{Term: "loan approved", Label: "Loan approved"},
		{Term: "credit card", Label: "Credit card"},
		{Term: "refund", Label: "Refund"},
		{Term: "cashback", Label: "Cashback"},
		{Term: "job offer", Label: "Job offer"},
		{Term: "work from home", Label: "Work from home"},
		{Term: "earn money", Label: "Earn money"},
		{Term: "investment", Label: "Investment"},
		{Term: "trading", Label: "Trading"},
		{Term: "bitcoin", Label: "Bitcoin"},
		{Term: "crypto", Label: "Crypto"},
		{Term: "forex", Label: "Forex"},
		{Term: "stock tips", Label: "Stock tips"},
		{Term: "customs", Label: "Customs"},
		{Term: "courier", Label: "Courier"},
		{Term: "parcel", Label: "Parcel"},
		{Term: "police", Label: "Police"},
		{Term: "cbi", Label: "CBI"},
		{Term: "narcotics", Label: "Narcotics"},
		{Term: "arrest", Label: "Arrest"},
		{Term: "warrant", Label: "Warrant"},
		{Term: "legal action", Label: "Legal action"},
		{Term: "bank", Label: "Bank"},
		{Term: "rbi", Label: "RBI"},
		{Term: "password", Label: "Password"},
		{Term: "pin", Label: "PIN"},
		{Term: "cvv", Label: "CVV"},
		{Term: "expire", Label: "Expire"},
		{Term: "limited time", Label: "Limited time"},
		{Term: "act now", Label: "Act now"},
		{Term: "sextortion", Label: "Sextortion"},
		{Term: "blackmail", Label: "Blackmail"},
	}
}
