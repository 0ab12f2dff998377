// Package main provides the mldsa-cli command line interface for
// ml-dsa-go key generation, signing and verification.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/core"
	"github.com/latticekit/ml-dsa-go/sign"
	"github.com/latticekit/ml-dsa-go/utils"
)

const (
	version = "1.0.0"
	appName = "mldsa-cli"
)

// OutputFormat represents the output format for serialization
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	SecurityLevel mldsa.SecurityLevel
	OutputFormat  OutputFormat
	OutputFile    string
	Verbose       bool
	Timing        bool
	Deterministic bool
}

// KeyPairExport represents an exported signature key pair
type KeyPairExport struct {
	SecurityLevel string `json:"security_level"`
	PublicKey     string `json:"public_key"`
	SecretKey     string `json:"secret_key"`
	CreatedAt     string `json:"created_at"`
	KeyHMAC       string `json:"key_hmac,omitempty"` // HMAC for integrity verification
}

// SignatureExport represents an exported signature
type SignatureExport struct {
	SecurityLevel string `json:"security_level"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("ml-dsa-go library version %s\n", mldsa.Version)
	case "keygen":
		cmdKeygen(os.Args[2:])
	case "sign":
		cmdSign(os.Args[2:])
	case "verify":
		cmdVerify(os.Args[2:])
	case "info":
		cmdInfo(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Module-Lattice Digital Signature CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    keygen      Generate a signature key pair
    sign        Sign a message
    verify      Verify a signature
    info        Show parameter and size information for a security level
    version     Show version information
    help        Show this help message

OPTIONS:
    --level <44|65|87>          Security level (default: 65)
    --output <file>             Output file (default: stdout)
    --format <hex|base64>       Key/signature encoding (default: base64)
    --deterministic             Deterministic signing (all-zero randomizer)
    --seed <hex>                Deterministic key generation seed (64 hex chars)
    --timing                    Show timing information
    --verbose                   Verbose output

EXAMPLES:
    # Generate a key pair
    %s keygen --level 87 --output keypair.json

    # Sign a message
    %s sign --secret-key keypair.json --message "Document to sign"

    # Sign a file deterministically
    %s sign --secret-key keypair.json --input document.bin --deterministic

    # Verify a signature
    %s verify --public-key keypair.json --message "Document to sign" --signature sig.json

    # Show parameters
    %s info --level 87
`, appName, appName, appName, appName, appName, appName, appName)
}

func cmdKeygen(args []string) {
	config := parseConfig(args)
	params := mustParams(config.SecurityLevel)
	seedHex := getArg(args, "--seed", "-s")

	var kp *mldsa.KeyPair
	var err error
	start := time.Now()
	if seedHex != "" {
		var seed []byte
		seed, err = hex.DecodeString(seedHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid seed hex: %v\n", err)
			os.Exit(1)
		}
		// Caller-supplied seeds cross a user interface, so weak ones
		// are rejected here rather than in the library.
		if err = utils.ValidateSeedEntropy(seed); err != nil {
			fmt.Fprintf(os.Stderr, "Rejecting seed: %v\n", err)
			os.Exit(1)
		}
		kp, err = sign.GenerateKeyPairFromSeed(params, seed)
	} else {
		kp, err = sign.GenerateKeyPair(config.SecurityLevel)
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key pair: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Key generation took: %v\n", elapsed)
	}

	pkBytes := sign.SerializePublicKey(&kp.PublicKey)
	skBytes := sign.SerializeSecretKey(&kp.SecretKey)

	export := KeyPairExport{
		SecurityLevel: string(config.SecurityLevel),
		PublicKey:     encodeBytes(pkBytes, config.OutputFormat),
		SecretKey:     encodeBytes(skBytes, config.OutputFormat),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	export.KeyHMAC = generateKeyHMAC(export.PublicKey, export.SecretKey)

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Generated key pair with security level: %s\n", config.SecurityLevel)
		fmt.Fprintf(os.Stderr, "Public key size: %d bytes\n", len(pkBytes))
		fmt.Fprintf(os.Stderr, "Secret key size: %d bytes\n", len(skBytes))
		fmt.Fprintf(os.Stderr, "Public key fingerprint: %s\n", hex.EncodeToString(utils.SHA3256(pkBytes)[:16]))
	}
}

func cmdSign(args []string) {
	config := parseConfig(args)
	skFile := getArg(args, "--secret-key", "-sk")
	if skFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --secret-key is required\n")
		os.Exit(1)
	}

	message := readMessage(args)

	level, skData, err := loadKeyFromFile(skFile, "secret_key")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading secret key: %v\n", err)
		os.Exit(1)
	}
	params := mustParams(level)

	sk, err := sign.DeserializeSecretKey(params, skData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deserializing secret key: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	var sig *mldsa.Signature
	if config.Deterministic {
		sig, err = sign.SignDeterministic(sk, message)
	} else {
		sig, err = sign.Sign(sk, message)
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Signing took: %v\n", elapsed)
	}

	sigBytes := sign.SerializeSignature(params, sig)
	export := SignatureExport{
		SecurityLevel: string(level),
		Message:       base64.StdEncoding.EncodeToString(message),
		Signature:     encodeBytes(sigBytes, config.OutputFormat),
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Signature size: %d bytes\n", len(sigBytes))
	}
}

func cmdVerify(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	sigFile := getArg(args, "--signature", "-sig")
	if pkFile == "" || sigFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --public-key and --signature are required\n")
		os.Exit(1)
	}

	message := readMessage(args)

	level, pkData, err := loadKeyFromFile(pkFile, "public_key")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading public key: %v\n", err)
		os.Exit(1)
	}
	params := mustParams(level)

	pk, err := sign.DeserializePublicKey(params, pkData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deserializing public key: %v\n", err)
		os.Exit(1)
	}

	sigData, err := os.ReadFile(sigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading signature file: %v\n", err)
		os.Exit(1)
	}
	var sigExport SignatureExport
	if err := json.Unmarshal(sigData, &sigExport); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing signature file: %v\n", err)
		os.Exit(1)
	}
	sigBytes, err := decodeString(sigExport.Signature)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding signature: %v\n", err)
		os.Exit(1)
	}

	sig, err := sign.DeserializeSignature(params, sigBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid signature encoding: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	valid := sign.Verify(pk, message, sig)
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Verification took: %v\n", elapsed)
	}

	if valid {
		fmt.Println("Signature is VALID")
	} else {
		fmt.Println("Signature is INVALID")
		os.Exit(1)
	}
}

func cmdInfo(args []string) {
	config := parseConfig(args)
	params := mustParams(config.SecurityLevel)

	fmt.Printf("Security level:      %s\n", params.Level)
	fmt.Printf("Ring dimension n:    %d\n", mldsa.N)
	fmt.Printf("Modulus q:           %d\n", mldsa.Q)
	fmt.Printf("Matrix dimensions:   %d x %d\n", params.K, params.L)
	fmt.Printf("Secret range eta:    %d\n", params.Eta)
	fmt.Printf("Challenge weight:    %d\n", params.Tau)
	fmt.Printf("Rejection margin:    %d\n", params.Beta)
	fmt.Printf("Mask range gamma1:   2^%d\n", params.Gamma1Bits)
	fmt.Printf("Rounding gamma2:     %d\n", params.Gamma2)
	fmt.Printf("Max hint weight:     %d\n", params.Omega)
	fmt.Printf("Public key size:     %d bytes\n", params.PublicKeySize())
	fmt.Printf("Secret key size:     %d bytes\n", params.SecretKeySize())
	fmt.Printf("Signature size:      %d bytes\n", params.SignatureSize())
}

// generateKeyHMAC computes HMAC-SHA256 of key material for basic integrity
// verification of exported files. This only detects accidental corruption,
// not tampering: the HMAC key is the public key, which is not secret.
func generateKeyHMAC(publicKey, secretKey string) string {
	h := hmac.New(sha256.New, []byte(publicKey))
	h.Write([]byte(secretKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// verifyKeyHMAC checks the integrity field of an exported key pair.
func verifyKeyHMAC(export *KeyPairExport) bool {
	if export.KeyHMAC == "" {
		return true // integrity field is optional
	}
	return hmac.Equal([]byte(export.KeyHMAC), []byte(generateKeyHMAC(export.PublicKey, export.SecretKey)))
}

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		SecurityLevel: mldsa.MLDSA65,
		OutputFormat:  FormatBase64,
	}

	switch getArg(args, "--level", "-l") {
	case "", "65":
	case "44":
		config.SecurityLevel = mldsa.MLDSA44
	case "87":
		config.SecurityLevel = mldsa.MLDSA87
	default:
		fmt.Fprintf(os.Stderr, "Invalid security level (use 44, 65 or 87)\n")
		os.Exit(1)
	}

	switch strings.ToLower(getArg(args, "--format", "-f")) {
	case "", "base64":
	case "hex":
		config.OutputFormat = FormatHex
	default:
		fmt.Fprintf(os.Stderr, "Invalid format (use hex or base64)\n")
		os.Exit(1)
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.Verbose = hasFlag(args, "--verbose", "-V")
	config.Timing = hasFlag(args, "--timing", "-t")
	config.Deterministic = hasFlag(args, "--deterministic", "-d")
	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || args[i] == short {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || arg == short {
			return true
		}
	}
	return false
}

func mustParams(level mldsa.SecurityLevel) mldsa.Params {
	params, err := core.GetParams(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return params
}

// readMessage resolves the message from --message or --input.
func readMessage(args []string) []byte {
	if msg := getArg(args, "--message", "-m"); msg != "" {
		return []byte(msg)
	}
	if inputFile := getArg(args, "--input", "-i"); inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		if err := utils.CheckLength(len(data), utils.MaxMessageSize); err != nil {
			fmt.Fprintf(os.Stderr, "Input file too large: %v\n", err)
			os.Exit(1)
		}
		return data
	}
	fmt.Fprintf(os.Stderr, "Error: --message or --input is required\n")
	os.Exit(1)
	return nil
}

func encodeBytes(data []byte, format OutputFormat) string {
	if format == FormatHex {
		return hex.EncodeToString(data)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// decodeString accepts either hex or base64, detecting the encoding.
func decodeString(s string) ([]byte, error) {
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// loadKeyFromFile reads an exported key pair file and returns the
// security level together with the decoded key named by keyField.
func loadKeyFromFile(filename, keyField string) (mldsa.SecurityLevel, []byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	if err := utils.CheckLength(len(data), utils.MaxEncodedKeySize); err != nil {
		return "", nil, fmt.Errorf("key file too large: %w", err)
	}

	var export KeyPairExport
	if err := json.Unmarshal(data, &export); err != nil {
		return "", nil, fmt.Errorf("parsing key file: %w", err)
	}
	if !verifyKeyHMAC(&export) {
		return "", nil, fmt.Errorf("key file integrity check failed")
	}

	var encoded string
	switch keyField {
	case "public_key":
		encoded = export.PublicKey
	case "secret_key":
		encoded = export.SecretKey
	default:
		return "", nil, fmt.Errorf("unknown key field: %s", keyField)
	}
	if encoded == "" {
		return "", nil, fmt.Errorf("key file has no %s field", keyField)
	}

	decoded, err := decodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decoding %s: %w", keyField, err)
	}
	return mldsa.SecurityLevel(export.SecurityLevel), decoded, nil
}

func writeOutput(data []byte, filename string) {
	if filename == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
}
