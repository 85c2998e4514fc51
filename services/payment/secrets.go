package payment

import (
	"fmt"

	"slotbook/config"
)

// Provider identifies a payment gateway.
type Provider string

const (
	ProviderRazorpay Provider = "razorpay"
	ProviderPayU     Provider = "payu"
)

// Credential is one key/secret pair for a provider. For Razorpay the pair is
// key id / key secret; for PayU it is merchant key / salt.
type Credential struct {
	Key    string
	Secret string
}

// Secrets maps (provider, currency) to the credential used for signing and
// verification. It is read-only configuration built once at startup and
// injected into the verifiers; nothing reads the environment at
// verification time.
type Secrets map[Provider]map[string]Credential

// Lookup returns the credential for the provider and currency. Currencies
// without a dedicated credential fall back to INR, the default merchant
// account.
func (s Secrets) Lookup(provider Provider, currency string) (Credential, error) {
	byCurrency, ok := s[provider]
	if !ok {
		return Credential{}, fmt.Errorf("no credentials configured for provider %s", provider)
	}
	if cred, ok := byCurrency[currency]; ok && cred.Secret != "" {
		return cred, nil
	}
	if cred, ok := byCurrency["INR"]; ok && cred.Secret != "" {
		return cred, nil
	}
	return Credential{}, fmt.Errorf("no credentials configured for provider %s, currency %s", provider, currency)
}

// SecretsFromConfig assembles the secret map from loaded configuration.
// USD entries default to the INR pair when unset, mirroring how the merchant
// accounts are provisioned.
func SecretsFromConfig(cfg config.Config) Secrets {
	razorpayUSD := Credential{Key: cfg.RazorpayKeyIDUSD, Secret: cfg.RazorpayKeySecretUSD}
	if razorpayUSD.Secret == "" {
		razorpayUSD = Credential{Key: cfg.RazorpayKeyID, Secret: cfg.RazorpayKeySecret}
	}
	payuUSD := Credential{Key: cfg.PayUMerchantKeyUSD, Secret: cfg.PayUSaltUSD}
	if payuUSD.Secret == "" {
		payuUSD = Credential{Key: cfg.PayUMerchantKey, Secret: cfg.PayUSalt}
	}

	return Secrets{
		ProviderRazorpay: {
			"INR": {Key: cfg.RazorpayKeyID, Secret: cfg.RazorpayKeySecret},
			"USD": razorpayUSD,
		},
		ProviderPayU: {
			"INR": {Key: cfg.PayUMerchantKey, Secret: cfg.PayUSalt},
			"USD": payuUSD,
		},
	}
}
