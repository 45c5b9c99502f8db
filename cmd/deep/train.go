package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/deep/internal/autodiff"
	"github.com/born-ml/deep/internal/data"
	"github.com/born-ml/deep/internal/nn"
	"github.com/born-ml/deep/internal/optim"
)

// optimizer is what the training loop needs from SGD and Adam.
type optimizer interface {
	optim.Optimizer
	nn.OptimizerState
}

type trainConfig struct {
	dataPath  string
	testPath  string
	epochs    int
	batchSize int
	lr        float64
	momentum  float64
	optimizer string
	seed      uint64
	hidden    []int
	savePath  string
	loadPath  string
}

func parseTrainFlags(args []string, stdout io.Writer) (trainConfig, error) {
	var cfg trainConfig
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&cfg.dataPath, "data", "", "Training CSV file (header, index column, features, label last)")
	fs.StringVar(&cfg.testPath, "test", "", "Test CSV file for accuracy after training")
	fs.IntVar(&cfg.epochs, "epochs", 100, "Number of training epochs")
	fs.IntVar(&cfg.batchSize, "batch", 64, "Batch size for training")
	fs.Float64Var(&cfg.lr, "lr", 0.00005, "Learning rate")
	fs.Float64Var(&cfg.momentum, "momentum", 0.9, "SGD momentum")
	fs.StringVar(&cfg.optimizer, "optimizer", "sgd", "Optimizer: sgd or adam")
	fs.Uint64Var(&cfg.seed, "seed", nn.DefaultSeed, "Seed for initialization and shuffling")
	hidden := fs.String("hidden", "64,64,32", "Comma-separated hidden layer sizes")
	fs.StringVar(&cfg.savePath, "save", "", "Write a checkpoint here after training")
	fs.StringVar(&cfg.loadPath, "load", "", "Resume from this checkpoint")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.dataPath == "" {
		return cfg, errors.New("train: -data is required")
	}
	if cfg.epochs < 0 {
		return cfg, errors.Errorf("train: -epochs must not be negative, got %d", cfg.epochs)
	}
	for _, s := range strings.Split(*hidden, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return cfg, errors.Wrapf(err, "train: -hidden %q", *hidden)
		}
		cfg.hidden = append(cfg.hidden, n)
	}
	return cfg, nil
}

func newOptimizer(cfg trainConfig, params []*nn.Parameter) (optimizer, error) {
	switch cfg.optimizer {
	case "sgd":
		sgd, err := optim.NewSGD(params, optim.SGDConfig{LR: cfg.lr, Momentum: cfg.momentum})
		if err != nil {
			return nil, err
		}
		return sgd, nil
	case "adam":
		adam, err := optim.NewAdam(params, optim.AdamConfig{LR: cfg.lr})
		if err != nil {
			return nil, err
		}
		return adam, nil
	default:
		return nil, errors.Errorf("train: unknown optimizer %q", cfg.optimizer)
	}
}

func runTrain(args []string, stdout io.Writer) error {
	cfg, err := parseTrainFlags(args, stdout)
	if err != nil {
		return err
	}

	train, err := data.LoadCSVFile(cfg.dataPath, data.DefaultCSVConfig())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Loaded %d samples with %d features from %s\n", train.Len(), train.Features(), cfg.dataPath)

	sizes := append([]int{train.Features()}, cfg.hidden...)
	sizes = append(sizes, 1)
	model, err := nn.NewMLP(sizes, nn.WithRand(nn.NewRand(cfg.seed)))
	if err != nil {
		return err
	}
	opt, err := newOptimizer(cfg, model.NamedParameters())
	if err != nil {
		return err
	}

	startEpoch := 1
	var step int64
	if cfg.loadPath != "" {
		ckpt, err := nn.LoadCheckpoint(cfg.loadPath, model.Model, opt)
		if err != nil {
			return err
		}
		startEpoch, step = ckpt.Epoch+1, ckpt.Step
		fmt.Fprintf(stdout, "Resumed from %s at epoch %d (loss %.6f)\n", cfg.loadPath, ckpt.Epoch, ckpt.Loss)
	}

	if _, err := model.ParametersInfo().WriteTo(stdout); err != nil {
		return err
	}

	loader, err := data.NewLoader(train, data.LoaderConfig{
		BatchSize: cfg.batchSize,
		Shuffle:   true,
		Rand:      nn.NewRand(cfg.seed),
	})
	if err != nil {
		return err
	}

	start := time.Now()
	lastEpoch, loss := startEpoch-1, 0.0
	for epoch := startEpoch; epoch < startEpoch+cfg.epochs; epoch++ {
		loss, err = trainEpoch(model, opt, loader)
		if err != nil {
			return errors.WithMessagef(err, "epoch %d", epoch)
		}
		step += int64(loader.NumBatches())
		lastEpoch = epoch
		fmt.Fprintf(stdout, "Training on epoch %d: loss is %.6f\n", epoch, loss)
	}
	if cfg.epochs > 0 {
		fmt.Fprintf(stdout, "%.4fs per epoch\n", time.Since(start).Seconds()/float64(cfg.epochs))
	}

	if cfg.testPath != "" {
		accuracy, err := evaluate(model, cfg.testPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Accuracy is %.2f%%\n", accuracy)
	}

	if cfg.savePath != "" {
		ckpt := &nn.Checkpoint{
			Model:     model.Model,
			Optimizer: opt,
			Epoch:     lastEpoch,
			Step:      step,
			Loss:      loss,
			Metadata:  map[string]string{"data": cfg.dataPath, "layers": fmt.Sprint(sizes)},
		}
		if err := ckpt.Save(cfg.savePath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved checkpoint to %s\n", cfg.savePath)
	}
	return nil
}

// trainEpoch runs one pass over loader and returns the sample-weighted mean
// loss.
func trainEpoch(model *nn.MLP, opt optimizer, loader *data.Loader) (float64, error) {
	defer loader.Reset()

	running := 0.0
	for loader.HasNext() {
		opt.ZeroGrad()

		batch := loader.Next()
		x, err := autodiff.NewConstant(batch.X)
		if err != nil {
			return 0, err
		}
		pred, err := model.Forward(x)
		if err != nil {
			return 0, err
		}
		loss, err := nn.MSELoss(pred, batch.Y)
		if err != nil {
			return 0, err
		}
		if err := loss.Backward(); err != nil {
			return 0, err
		}
		opt.Step()

		v, err := loss.Scalar()
		if err != nil {
			return 0, err
		}
		running += v * float64(batch.Size())
	}
	return running / float64(loader.Len()), nil
}

func evaluate(model *nn.MLP, path string) (float64, error) {
	test, err := data.LoadCSVFile(path, data.DefaultCSVConfig())
	if err != nil {
		return 0, err
	}
	x, err := autodiff.NewConstant(test.X)
	if err != nil {
		return 0, err
	}
	pred, err := model.Forward(x)
	if err != nil {
		return 0, err
	}
	return data.Accuracy(pred.Value(), test.Y)
}
