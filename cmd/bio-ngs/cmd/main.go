package cmd

import (
	"context"
	"flag"
	"fmt"
	"regexp"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/ngs/encoding/fasta"
	"github.com/grailbio/ngs/encoding/ngsprovider"
	"github.com/grailbio/ngs/libmanager"
	"github.com/grailbio/ngs/ngs"
	"v.io/x/lib/cmdline"
)

var (
	libURL     = flag.String("lib-url", libmanager.DefaultURL, "URL of the NCBI download service for the NGS libraries")
	noDownload = flag.Bool("no-download", false, "Never download the NGS libraries; only use already installed ones")
	libDir     = flag.String("lib-dir", "", "Search only this directory for the NGS libraries, and download into it")
)

// manager returns the ngs.Manager configured by the global flags.
func manager() *ngs.Manager {
	opts := libmanager.DefaultOpts
	opts.URL = *libURL
	opts.DisableDownload = *noDownload
	if *libDir != "" {
		opts.Dirs = []string{*libDir}
	}
	return ngs.NewManager(opts)
}

func oneArg(name string, argv []string) (string, error) {
	if len(argv) != 1 {
		return "", fmt.Errorf("%s takes one accession argument, but got %v", name, argv)
	}
	return argv[0], nil
}

func newCmdLibs() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "libs",
		Short: "Locate, or download, the NGS libraries and print their paths",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		return libs(context.Background(), env.Stdout, manager())
	})
	return cmd
}

func newCmdView() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "view",
		Short:    "Print the alignments of a read collection in SAM format",
		ArgsName: "accession",
	}
	opts := viewOpts{}
	cmd.Flags.BoolVar(&opts.headerOnly, "header", false, "Print only the header")
	cmd.Flags.BoolVar(&opts.withHeader, "with-header", false, "Print the header before the records")
	cmd.Flags.StringVar(&opts.regions, "regions", "", `A comma-separated list of regions to show, each of the form 'ref:begin-end'.
[begin,end] is a 1-based closed interval of alignment start positions, as in samtools.`)
	cmd.Flags.StringVar(&opts.filter, "filter", "", filterHelp)
	cmd.Flags.StringVar(&opts.out, "out", "", "Output path. Defaults to stdout. A .gz suffix compresses the output")
	cmd.Flags.IntVar(&opts.basesPerShard, "bases-per-shard", ngsprovider.DefaultBasesPerShard, "Width of the shards read in parallel")
	cmd.Flags.BoolVar(&opts.unmapped, "unmapped", false, "Also print the unaligned reads, after the alignments")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		spec, err := oneArg("view", argv)
		if err != nil {
			return err
		}
		return view(context.Background(), env.Stdout, ngsprovider.NewProvider(manager(), spec), opts)
	})
	return cmd
}

func newCmdConvert() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "convert",
		Short:    "Convert the alignments of a read collection to a BAM file",
		ArgsName: "accession destpath",
	}
	parallelism := cmd.Flags.Int("parallelism", 0, "Number of compression threads. 0 means runtime.NumCPU()")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("convert takes accession destpath, but found %v", argv)
		}
		p := ngsprovider.NewProvider(manager(), argv[0])
		err := convertToBAM(context.Background(), argv[1], p, *parallelism)
		if e := p.Close(); e != nil && err == nil {
			err = e
		}
		return err
	})
	return cmd
}

func newCmdFlagstat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "flagstat",
		Short:    "Show flag statistics of a read collection. This command is a clone of 'samtools flagstat'.",
		ArgsName: "accession",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		spec, err := oneArg("flagstat", argv)
		if err != nil {
			return err
		}
		return flagstat(env.Stdout, ngsprovider.NewProvider(manager(), spec))
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of a read collection.
The checksum is a JSON string describing the summary of various attributes of the alignments`,
		ArgsName: "accession",
	}
	opts := checksumOpts{}
	cmd.Flags.BoolVar(&opts.name, "name", false, "Checksum the name field")
	cmd.Flags.BoolVar(&opts.tempLen, "templen", false, "Checksum the templen field")
	cmd.Flags.BoolVar(&opts.seq, "seq", false, "Checksum the seq field")
	cmd.Flags.BoolVar(&opts.cigar, "cigar", false, "Checksum the cigar field")
	cmd.Flags.BoolVar(&opts.aux, "aux", false, "Checksum the aux field")
	cmd.Flags.BoolVar(&opts.mapQ, "mapq", false, "Checksum the mapq field")
	cmd.Flags.BoolVar(&opts.matePos, "matePos", false, "Checksum the mateRef and matePos fields")
	cmd.Flags.BoolVar(&opts.qual, "qual", false, "Checksum the qual fields")
	cmd.Flags.BoolVar(&opts.all, "all", false, "Checksum the all the fields")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		spec, err := oneArg("checksum", argv)
		if err != nil {
			return err
		}
		return checksum(env.Stdout, ngsprovider.NewProvider(manager(), spec), opts)
	})
	return cmd
}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Print the statistics of every read group as TSV",
		ArgsName: "accession",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		spec, err := oneArg("stats", argv)
		if err != nil {
			return err
		}
		return stats(context.Background(), env.Stdout, manager(), spec)
	})
	return cmd
}

func newCmdPileup() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "pileup",
		Short:    "Print the depth and base counts of a reference region as TSV",
		ArgsName: "accession ref:begin-end",
	}
	opts := pileupOpts{}
	cmd.Flags.BoolVar(&opts.secondary, "secondary", false, "Include secondary alignments")
	cmd.Flags.IntVar(&opts.minMapQ, "mapq", 0, "Skip alignments with a mapping quality below this value")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("pileup takes accession ref:begin-end, but found %v", argv)
		}
		r, err := parseRegion(argv[1])
		if err != nil {
			return err
		}
		return pileup(context.Background(), env.Stdout, manager(), argv[0], r, opts)
	})
	return cmd
}

func newCmdFASTQ() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fastq",
		Short:    "Write the reads of a read collection in FASTQ format",
		ArgsName: "accession",
	}
	opts := fastqOpts{}
	cmd.Flags.StringVar(&opts.category, "category", ngs.AllReads.String(), "Reads to write: all, aligned, fullyAligned, partiallyAligned or unaligned")
	cmd.Flags.StringVar(&opts.r1, "r1", "", "Output path of the first fragments. Defaults to stdout. A .gz suffix compresses the output")
	cmd.Flags.StringVar(&opts.r2, "r2", "", `Output path of the second fragments. If set, only reads with exactly two
fragments are written`)
	cmd.Flags.BoolVar(&opts.noPrefix, "no-prefix", false, "Do not prefix read IDs with the accession")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		spec, err := oneArg("fastq", argv)
		if err != nil {
			return err
		}
		return exportFASTQ(context.Background(), env.Stdout, manager(), spec, opts)
	})
	return cmd
}

func newCmdReference() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "reference",
		Short:    "Write the reference sequences of a read collection in FASTA format",
		ArgsName: "accession [refname...]",
		ArgsLong: "refname is the common name of a reference, e.g. chr1. Without refnames, every reference is written.",
	}
	opts := referenceOpts{}
	cmd.Flags.StringVar(&opts.out, "out", "", "Output path. Defaults to stdout")
	cmd.Flags.BoolVar(&opts.index, "index", false, "Also write the FASTA index to <out>.fai")
	cmd.Flags.IntVar(&opts.lineWidth, "width", fasta.DefaultLineWidth, "Bases per line")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 {
			return fmt.Errorf("reference takes accession [refname...], but found %v", argv)
		}
		return writeReference(context.Background(), env.Stdout, manager(), argv[0], argv[1:], opts)
	})
	return cmd
}

// Run runs the bio-ngs command line.
func Run() {
	cmdline.HideGlobalFlagsExcept(regexp.MustCompile(`^(lib-url|no-download|lib-dir)$`))
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-ngs",
			Short:    "Tools for reading NCBI SRA data through the NGS libraries",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdLibs(),
				newCmdView(),
				newCmdConvert(),
				newCmdFlagstat(),
				newCmdChecksum(),
				newCmdStats(),
				newCmdPileup(),
				newCmdFASTQ(),
				newCmdReference(),
			},
		})
}
