package daraz

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SignMethod is the digest algorithm name the API expects. It has to be
// part of the signed parameter set: the upstream verifier includes it in
// its own canonical string, and a request signed without it is rejected
// with an auth error.
const SignMethod = "sha256"

// Sign computes the request signature for the given API path and
// parameters. Any parameter named "sign" is excluded. Keys are sorted
// bytewise and concatenated as key+value after the path; the result is
// HMAC-SHA256 over that base string with the app secret as key, encoded
// as uppercase hex.
func Sign(apiPath string, params map[string]string, appSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var base strings.Builder
	base.WriteString(apiPath)
	for _, k := range keys {
		base.WriteString(k)
		base.WriteString(params[k])
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(base.String()))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// signedParams attaches the common auth parameters and the signature to
// the given request-specific parameters. The map is mutated in place and
// returned for convenience.
func signedParams(apiPath string, params map[string]string, appKey, accessToken, appSecret string, now time.Time) map[string]string {
	params["app_key"] = appKey
	if accessToken != "" {
		params["access_token"] = accessToken
	}
	params["timestamp"] = strconv.FormatInt(now.UnixMilli(), 10)
	params["sign_method"] = SignMethod
	params["sign"] = Sign(apiPath, params, appSecret)

	return params
}
