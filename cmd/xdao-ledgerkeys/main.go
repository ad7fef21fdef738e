package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"google.golang.org/grpc"

	"xdao.co/ledgerkeys/checksum"
	"xdao.co/ledgerkeys/contentid"
	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/keystore"
	"xdao.co/ledgerkeys/remotesign"
	"xdao.co/ledgerkeys/statekey"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "account-hash":
		return cmdAccountHash(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "checksum":
		return cmdChecksum(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "signer-serve":
		return cmdSignerServe(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-ledgerkeys: key, address and state-key CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-ledgerkeys key init --name <name> [--algorithm ed25519|secp256k1] [--dir <dir>] [--force]")
	fmt.Fprintln(w, "  xdao-ledgerkeys key list [--dir <dir>]")
	fmt.Fprintln(w, "  xdao-ledgerkeys key export --name <name> [--dir <dir>]")
	fmt.Fprintln(w, "  xdao-ledgerkeys key fingerprint --name <name> [--dir <dir>]")
	fmt.Fprintln(w, "  xdao-ledgerkeys account-hash <public-key-hex>")
	fmt.Fprintln(w, "  xdao-ledgerkeys inspect <public-key-hex | formatted-state-key>")
	fmt.Fprintln(w, "  xdao-ledgerkeys checksum encode <hex>")
	fmt.Fprintln(w, "  xdao-ledgerkeys checksum verify <text>")
	fmt.Fprintln(w, "  xdao-ledgerkeys sign (--name <name> [--dir <dir>] | --remote <addr> --name <name>) (--msg-hex <hex> | --msg-file <file>)")
	fmt.Fprintln(w, "  xdao-ledgerkeys verify --key <public-key-hex> --signature <hex> (--msg-hex <hex> | --msg-file <file>)")
	fmt.Fprintln(w, "  xdao-ledgerkeys signer-serve --listen <addr> [--dir <dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys are stored under ~/.xdao/ledger-keys/<name> (0600 secret.pem files)")
	fmt.Fprintln(w, "  - account-hash and sign print checksummed hex (mixed case)")
	fmt.Fprintln(w, "  - signer-serve exposes the key directory over gRPC; secrets never leave the host")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-ledgerkeys key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, list, export, fingerprint")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key name")
		algName := fs.String("algorithm", "ed25519", "signature algorithm")
		dir := fs.String("dir", "", "key directory")
		force := fs.Bool("force", false, "overwrite an existing key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "key init: --name is required")
			return 2
		}
		var alg keypair.Algorithm
		switch strings.ToLower(*algName) {
		case "ed25519":
			alg = keypair.ED25519
		case "secp256k1":
			alg = keypair.SECP256K1
		default:
			fmt.Fprintf(errOut, "key init: unknown algorithm %q\n", *algName)
			return 2
		}
		store, err := keystore.Create(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		accountHex, secretPath, err := store.Init(*name, alg, *force)
		if err != nil {
			fmt.Fprintf(errOut, "key init: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "public key: %s\n", accountHex)
		fmt.Fprintf(out, "secret key: %s\n", secretPath)
		return 0
	case "list":
		fs := flag.NewFlagSet("key list", flag.ContinueOnError)
		fs.SetOutput(errOut)
		dir := fs.String("dir", "", "key directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		store, err := keystore.Create(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		entries, err := store.List()
		if err != nil {
			fmt.Fprintf(errOut, "key list: %v\n", err)
			return 1
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, e.AccountHex)
		}
		return 0
	case "export":
		fs := flag.NewFlagSet("key export", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key name")
		dir := fs.String("dir", "", "key directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "key export: --name is required")
			return 2
		}
		store, err := keystore.Create(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key export: %v\n", err)
			return 1
		}
		accountHex, err := store.Export(*name)
		if err != nil {
			fmt.Fprintf(errOut, "key export: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, accountHex)
		return 0
	case "fingerprint":
		fs := flag.NewFlagSet("key fingerprint", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key name")
		dir := fs.String("dir", "", "key directory")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "key fingerprint: --name is required")
			return 2
		}
		store, err := keystore.Create(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "key fingerprint: %v\n", err)
			return 1
		}
		fp, err := store.Fingerprint(*name)
		if err != nil {
			fmt.Fprintf(errOut, "key fingerprint: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, fp)
		return 0
	default:
		fmt.Fprintf(errOut, "key: unknown subcommand %q\n", args[0])
		return 2
	}
}

func cmdAccountHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("account-hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-ledgerkeys account-hash <public-key-hex>")
		return 2
	}
	pub, err := keypair.NewPublicKeyFromHex(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "account-hash: %v\n", err)
		return 1
	}
	hash := pub.AccountHash()
	fmt.Fprintln(out, checksum.Encode(hash[:]))
	return 0
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-ledgerkeys inspect <public-key-hex | formatted-state-key>")
		return 2
	}
	text := fs.Arg(0)

	if key, err := statekey.FromFormattedString(text); err == nil {
		fmt.Fprintf(out, "kind: state key\n")
		fmt.Fprintf(out, "tag: %#02x\n", byte(key.Tag()))
		fmt.Fprintf(out, "formatted: %s\n", key.ToFormattedString())
		fmt.Fprintf(out, "bytes: %s\n", strings.ToLower(hex.EncodeToString(key.Bytes())))
		return 0
	}

	pub, err := keypair.NewPublicKeyFromHex(text)
	if err != nil {
		fmt.Fprintf(errOut, "inspect: not a state key or public key: %v\n", err)
		return 1
	}
	hash := pub.AccountHash()
	fmt.Fprintf(out, "kind: public key\n")
	fmt.Fprintf(out, "algorithm: %s\n", pub.Algorithm())
	fmt.Fprintf(out, "account hex: %s\n", pub.AccountHex())
	fmt.Fprintf(out, "account hash: %s\n", checksum.Encode(hash[:]))
	fmt.Fprintf(out, "state key: %s\n", statekey.AccountKeyFromPublicKey(pub).ToFormattedString())
	fmt.Fprintf(out, "fingerprint: %s\n", contentid.Fingerprint(pub.Bytes()))
	return 0
}

func cmdChecksum(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-ledgerkeys checksum (encode <hex> | verify <text>)")
		return 2
	}
	switch args[0] {
	case "encode":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "usage: xdao-ledgerkeys checksum encode <hex>")
			return 2
		}
		b, err := checksum.Decode(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "checksum encode: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, checksum.Encode(b))
		return 0
	case "verify":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "usage: xdao-ledgerkeys checksum verify <text>")
			return 2
		}
		ok, err := checksum.Verify(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "checksum verify: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, ok)
		if !ok {
			return 1
		}
		return 0
	default:
		fmt.Fprintf(errOut, "checksum: unknown subcommand %q\n", args[0])
		return 2
	}
}

func readMessage(msgHex, msgFile string) ([]byte, error) {
	switch {
	case msgHex != "" && msgFile != "":
		return nil, fmt.Errorf("--msg-hex and --msg-file are mutually exclusive")
	case msgHex != "":
		b, err := hex.DecodeString(strings.ToLower(msgHex))
		if err != nil {
			return nil, fmt.Errorf("invalid --msg-hex: %v", err)
		}
		return b, nil
	case msgFile != "":
		return os.ReadFile(msgFile)
	default:
		return nil, fmt.Errorf("one of --msg-hex or --msg-file is required")
	}
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "key name")
	dir := fs.String("dir", "", "key directory")
	remote := fs.String("remote", "", "remote signer address")
	msgHex := fs.String("msg-hex", "", "message bytes as hex")
	msgFile := fs.String("msg-file", "", "message file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "sign: --name is required")
		return 2
	}
	message, err := readMessage(*msgHex, *msgFile)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 2
	}

	var signer keypair.Signer
	if *remote != "" {
		client, err := remotesign.Dial(*remote, *name, remotesign.DialOptions{})
		if err != nil {
			fmt.Fprintf(errOut, "sign: %v\n", err)
			return 1
		}
		defer client.Close()
		signer = client
	} else {
		store, err := keystore.Create(*dir)
		if err != nil {
			fmt.Fprintf(errOut, "sign: %v\n", err)
			return 1
		}
		priv, err := store.Load(*name)
		if err != nil {
			fmt.Fprintf(errOut, "sign: %v\n", err)
			return 1
		}
		signer = priv
	}

	sig, err := signer.Sign(context.Background(), message)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, sig.Hex())
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	keyHex := fs.String("key", "", "tagged public key hex")
	sigHex := fs.String("signature", "", "tagged signature hex")
	msgHex := fs.String("msg-hex", "", "message bytes as hex")
	msgFile := fs.String("msg-file", "", "message file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keyHex == "" || *sigHex == "" {
		fmt.Fprintln(errOut, "verify: --key and --signature are required")
		return 2
	}
	message, err := readMessage(*msgHex, *msgFile)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 2
	}
	pub, err := keypair.NewPublicKeyFromHex(*keyHex)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	sig, err := keypair.NewSignatureFromHex(*sigHex)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	ok, err := pub.VerifySignature(message, sig.RawBytes())
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, ok)
	if !ok {
		return 1
	}
	return 0
}

func cmdSignerServe(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("signer-serve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	listen := fs.String("listen", "", "listen address, e.g. 127.0.0.1:7790")
	dir := fs.String("dir", "", "key directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *listen == "" {
		fmt.Fprintln(errOut, "signer-serve: --listen is required")
		return 2
	}
	store, err := keystore.Create(*dir)
	if err != nil {
		fmt.Fprintf(errOut, "signer-serve: %v\n", err)
		return 1
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintf(errOut, "signer-serve: %v\n", err)
		return 1
	}
	srv := grpc.NewServer()
	remotesign.RegisterSignerServer(srv, &remotesign.Server{
		Lookup: func(name string) (keypair.Signer, error) {
			priv, err := store.Load(name)
			if err != nil {
				return nil, err
			}
			return priv, nil
		},
	})
	fmt.Fprintf(out, "signer listening on %s (keys: %s)\n", lis.Addr(), store.Directory)
	if err := srv.Serve(lis); err != nil {
		fmt.Fprintf(errOut, "signer-serve: %v\n", err)
		return 1
	}
	return 0
}
