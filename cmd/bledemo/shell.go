package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli"
)

// stdin is shared between the shell loop and commands that read a line,
// so no input is lost between competing buffers.
var stdin = bufio.NewReader(os.Stdin)

// shell reads lines and re-dispatches each one through the app, so every
// command and flag works interactively exactly as it does from the
// command line.
func shell(app *cli.App) error {
	printMemReport()
	fmt.Println("Commands: scan (b), advertise (a), serve (g), publish (p), spawn (s), kill (t), mem (m), quit (q)")
	fmt.Println()

	sigs := make(chan os.Signal, 1)
	go func() {
		for range sigs {
			fmt.Printf("\n(type quit or q to exit)\n")
		}
	}()
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		fmt.Print("bledemo > ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "q" {
			break
		}
		if err := app.Run(append([]string{app.Name}, strings.Fields(line)...)); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}

	stopAllWorkers()
	fmt.Println("Goodbye!")
	return nil
}

// A worker ticks once a second until told to stop, standing in for the
// kind of background job a device demo keeps alive.
type worker struct {
	id    int
	stop  chan struct{}
	done  chan struct{}
	start time.Time
}

var (
	workersMu sync.Mutex
	workers   []*worker
	workerSeq int
)

func (w *worker) run() {
	defer close(w.done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for tick := 1; ; tick++ {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			fmt.Printf("[worker %d] tick %d: %.3fs\n", w.id, tick, time.Since(w.start).Seconds())
		}
	}
}

func spawn(c *cli.Context) error {
	workersMu.Lock()
	defer workersMu.Unlock()

	workerSeq++
	w := &worker{
		id:    workerSeq,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		start: time.Now(),
	}
	go w.run()
	workers = append(workers, w)
	fmt.Printf("Spawned worker %d (total workers: %d)\n", w.id, len(workers))
	return nil
}

func kill(c *cli.Context) error {
	workersMu.Lock()
	defer workersMu.Unlock()

	if len(workers) == 0 {
		fmt.Println("No workers to stop")
		return nil
	}
	w := workers[len(workers)-1]
	workers = workers[:len(workers)-1]
	close(w.stop)
	<-w.done
	fmt.Printf("Stopped worker %d (remaining: %d)\n", w.id, len(workers))
	return nil
}

func stopAllWorkers() {
	workersMu.Lock()
	defer workersMu.Unlock()

	for _, w := range workers {
		close(w.stop)
	}
	for _, w := range workers {
		<-w.done
	}
	workers = nil
}

func mem(c *cli.Context) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	workersMu.Lock()
	n := len(workers)
	workersMu.Unlock()

	fmt.Println("Heap stats:")
	fmt.Printf("  Sys (total):    %d bytes\n", ms.Sys)
	fmt.Printf("  Heap in use:    %d bytes\n", ms.HeapInuse)
	fmt.Printf("  Heap idle:      %d bytes\n", ms.HeapIdle)
	fmt.Printf("  Heap objects:   %d\n", ms.HeapObjects)
	fmt.Printf("  GC cycles:      %d\n", ms.NumGC)
	fmt.Printf("  Goroutines:     %d\n", runtime.NumGoroutine())
	fmt.Printf("  Active workers: %d\n", n)
	return nil
}

func heapUsed() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

type measurement struct {
	name   string
	before uint64
	after  uint64
}

// printMemReport prints the shell's startup banner: the heap cost of a
// handful of everyday allocations, measured live.
func printMemReport() {
	runtime.GC()
	baseline := heapUsed()

	measurements, withAll := runMeasurements()
	runtime.GC()
	afterDrop := heapUsed()

	fmt.Println("=== bledemo memory report ===")
	fmt.Printf("Baseline heap: %d bytes\n\n", baseline)
	fmt.Println("Heap cost by allocation:")
	fmt.Println("---------------------------------------------")
	var total int64
	for _, m := range measurements {
		alloc := int64(m.after) - int64(m.before)
		total += alloc
		fmt.Printf("  %-26s %+7d bytes  [heap: %d -> %d]\n", m.name, alloc, m.before, m.after)
	}
	fmt.Println("---------------------------------------------")
	fmt.Printf("Total allocated: %d bytes (heap: %d -> %d)\n", total, baseline, withAll)
	fmt.Printf("After releasing: %+d bytes freed (heap: %d -> %d)\n\n", int64(withAll)-int64(afterDrop), withAll, afterDrop)

	printGoroutineCost()
}

// runMeasurements performs the demo allocations and samples the heap
// around each one. Everything allocated dies with this frame, so the
// caller can observe the freed heap after the next collection.
func runMeasurements() ([]measurement, uint64) {
	var measurements []measurement
	measure := func(name string, alloc func() interface{}) interface{} {
		before := heapUsed()
		v := alloc()
		after := heapUsed()
		measurements = append(measurements, measurement{name: name, before: before, after: after})
		return v
	}

	keep := []interface{}{
		measure("[]int32 (100 items)", func() interface{} {
			s := make([]int32, 100)
			for i := range s {
				s[i] = int32(i)
			}
			return s
		}),
		measure("string (20 chars)", func() interface{} {
			return strings.Repeat("g", 20)
		}),
		measure("[256]byte (boxed)", func() interface{} {
			return new([256]byte)
		}),
		measure("map[int]int (empty)", func() interface{} {
			return make(map[int]int)
		}),
		measure("map[int]int (10 entries)", func() interface{} {
			m := make(map[int]int)
			for i := 0; i < 10; i++ {
				m[i] = i * 10
			}
			return m
		}),
	}

	withAll := heapUsed()
	runtime.KeepAlive(keep)
	return measurements, withAll
}

// printGoroutineCost spawns one parked goroutine, measures it, and joins
// it again.
func printGoroutineCost() {
	beforeSpawn := heapUsed()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		<-stop
		close(done)
	}()
	afterSpawn := heapUsed()

	close(stop)
	<-done
	runtime.GC()
	afterJoin := heapUsed()

	fmt.Println("Goroutine cost:")
	fmt.Println("---------------------------------------------")
	fmt.Printf("  spawn:                  %+7d bytes  [heap: %d -> %d]\n",
		int64(afterSpawn)-int64(beforeSpawn), beforeSpawn, afterSpawn)
	fmt.Printf("  after join:             %+7d bytes  [heap: %d -> %d]\n",
		int64(afterJoin)-int64(afterSpawn), afterSpawn, afterJoin)
	fmt.Println("---------------------------------------------")
	fmt.Println()
}
