package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"BLISS-Signature/bliss/keys"
	"BLISS-Signature/measure"
	"BLISS-Signature/measureutil"
)

func main() {
	variant := flag.Int("variant", 1, "BLISS variant id (1, 3 or 4)")
	keyPath := flag.String("key", "bliss_keys/private.pem", "private key PEM path")
	sigPath := flag.String("sig", "bliss_keys/signature.bin", "signature path")
	msgArg := flag.String("msg", "", "message file path or hex (if starts with 0x)")
	gen := flag.Bool("gen", false, "generate a fresh key pair")
	sign := flag.Bool("sign", false, "sign the message")
	verify := flag.Bool("verify", false, "verify the signature")
	flag.Parse()

	if *gen {
		key, err := keys.Generate(*variant)
		if err != nil {
			log.Fatal(err)
		}
		pemBytes, err := key.EncodePEM()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.MkdirAll("bliss_keys", 0o755); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*keyPath, pemBytes, 0o600); err != nil {
			log.Fatal(err)
		}
		fp, err := key.PublicKey().Fingerprint()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("generated %s key (%d bit), fingerprint %s\n",
			key.ParameterSet().Name, key.Keysize(), hex.EncodeToString(fp))
	}

	if *sign {
		key := loadKey(*keyPath)
		sig, err := key.Sign(keys.SignBlissWithSHA512, message(*msgArg))
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*sigPath, sig, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("signature written to %s (%d bytes)\n", *sigPath, len(sig))
	}

	if *verify {
		key := loadKey(*keyPath)
		sig, err := os.ReadFile(*sigPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := key.PublicKey().Verify(keys.SignBlissWithSHA512, message(*msgArg), sig); err != nil {
			log.Fatal(err)
		}
		fmt.Println("signature OK")
	}

	if !*gen && !*sign && !*verify {
		flag.Usage()
	}

	if measure.Enabled {
		for key, n := range measureutil.SnapshotAndReset() {
			fmt.Printf("measure %s = %d bytes\n", key, n)
		}
	}
}

func loadKey(path string) *keys.PrivateKey {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	key, err := keys.LoadPEM(data)
	if err != nil {
		log.Fatal(err)
	}
	return key
}

func message(arg string) []byte {
	if strings.HasPrefix(arg, "0x") {
		msg, err := hex.DecodeString(arg[2:])
		if err != nil {
			log.Fatal(err)
		}
		return msg
	}
	if arg == "" {
		return nil
	}
	msg, err := os.ReadFile(arg)
	if err != nil {
		log.Fatal(err)
	}
	return msg
}
