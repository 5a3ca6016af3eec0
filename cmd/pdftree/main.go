package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/benedoc-inc/pdftree"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			os.Exit(1)
		}
	}()

	var (
		inputPDF    = flag.String("input", "", "Path to input PDF file")
		outputPDF   = flag.String("output", "", "Path to output PDF file (if empty, parse-validate only)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		logFile     = flag.String("log", "", "Path to log file (if empty, logs to stderr)")
		compress    = flag.Bool("compress", false, "Recompress streams with FlateDecode")
		decompress  = flag.Bool("decompress", false, "Decompress streams on write")
		minify      = flag.Bool("minify", false, "Minify content streams")
		optimize    = flag.Bool("optimize", false, "Shorthand for compress+minify+use-object-streams")
		objStreams  = flag.Bool("use-object-streams", false, "Write a cross-reference stream with packed object streams")
		version     = flag.Int("version", 0, "Requested PDF minor version N in \"1.N\" (0 lets the writer choose)")
		strict      = flag.Bool("validate", false, "Promote validation warnings to a fatal error")
		noValidate  = flag.Bool("novalidate", false, "Skip page-tree validation entirely")
		preserveBin = flag.Bool("preserve-binary-signature", true, "Preserve the input's binary-signature comment bytes")
		stamp       = flag.Bool("stamp", false, "Set Info/CreationDate and Info/ModDate to the current time on write")
	)
	flag.Parse()

	os.Stderr.WriteString("=== pdftree starting ===\n")

	if *inputPDF == "" {
		log.Fatal("Error: -input flag is required")
	}

	var logF *os.File
	if *logFile != "" {
		var err error
		logF, err = os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			os.Exit(1)
		}
		log.SetOutput(logF)
		fmt.Fprintf(os.Stderr, "Logging to: %s\n", *logFile)
		fmt.Fprintf(logF, "=== pdftree started ===\n")
		logF.Sync()
	} else {
		log.SetOutput(os.Stderr)
	}
	if logF != nil {
		defer func() {
			fmt.Fprintf(logF, "=== pdftree finished ===\n")
			logF.Sync()
			logF.Close()
		}()
	}

	if *verbose {
		log.Printf("Input PDF: %s", *inputPDF)
		if *outputPDF != "" {
			log.Printf("Output PDF: %s", *outputPDF)
		}
	}

	pdfBytes, err := os.ReadFile(*inputPDF)
	if err != nil {
		log.Fatalf("Error reading PDF: %v", err)
	}

	sink := pdftree.NewStdLogSink(nil)
	parseFlags := pdftree.Flags{
		ValidateStrict: *strict,
		NoValidate:     *noValidate,
		Sink:           sink,
	}

	doc, err := pdftree.Parse(pdfBytes, parseFlags)
	if err != nil {
		log.Fatalf("Error parsing PDF: %v", err)
	}
	if *verbose {
		log.Printf("Parsed PDF version 1.%d, %d values in the arena",
			doc.Version, doc.Arena.Len())
	}

	if *outputPDF == "" {
		fmt.Fprintf(os.Stderr, "Parsed OK: %s (PDF 1.%d)\n", *inputPDF, doc.Version)
		fmt.Printf("Parsed OK: %s (PDF 1.%d)\n", *inputPDF, doc.Version)
		return
	}

	serializeFlags := pdftree.Flags{
		Compress:                *compress,
		Decompress:              *decompress,
		Minify:                  *minify,
		Optimize:                *optimize,
		UseObjectStreams:        *objStreams,
		PreserveBinarySignature: *preserveBin,
		Version:                 *version,
		Sink:                    sink,
	}

	var epoch int64
	if *stamp {
		epoch = time.Now().Unix()
	}

	out, err := pdftree.Serialize(doc, serializeFlags, epoch)
	if err != nil {
		log.Fatalf("Error serializing PDF: %v", err)
	}

	if err := os.WriteFile(*outputPDF, out, 0644); err != nil {
		log.Fatalf("Error writing PDF: %v", err)
	}

	if logF != nil {
		fmt.Fprintf(logF, "Successfully wrote %s (%d bytes)\n", *outputPDF, len(out))
		logF.Sync()
	}
	fmt.Fprintf(os.Stderr, "Successfully wrote %s (%d bytes)\n", *outputPDF, len(out))
	fmt.Printf("Successfully wrote %s (%d bytes)\n", *outputPDF, len(out))
}
