package openai

import "regexp"

// redactMarker menggantikan kredensial yang ketemu di isi dokumen
const redactMarker = "[REDACTED]"

// Kredensial yang sering ikut terlampir di lampiran laporan (konfigurasi,
// export spreadsheet). Jangan sampai terkirim ke provider model.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----[\s\S]*?-----END (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*["']?[A-Za-z0-9/+=]{20,}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{20,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{20,}`),
	regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
	regexp.MustCompile(`xox[baprs]-[A-Za-z0-9\-]{10,}`),
	regexp.MustCompile(`sk_(?:live|test)_[0-9A-Za-z]{10,}`),
	regexp.MustCompile(`(?i)sk-[a-z0-9\-_]{20,}`),
	regexp.MustCompile(`[A-Za-z0-9\-_]{8,}\.eyJ[A-Za-z0-9\-_]{5,}\.[A-Za-z0-9\-_]{10,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-\._~\+\/]{16,}=*`),
	regexp.MustCompile(`(?i)(api[_-]?key|client[_-]?secret|password|passwd|token)\s*[:=]\s*["']?[^\s"']{8,}`),
	regexp.MustCompile(`://[^\s/:@]+:[^\s/@]+@`),
}

// redactSecrets returns text with credential literals masked and the number
// of replacements made.
func redactSecrets(text string) (string, int) {
	n := 0
	for _, re := range secretPatterns {
		text = re.ReplaceAllStringFunc(text, func(string) string {
			n++
			return redactMarker
		})
	}
	return text, n
}
