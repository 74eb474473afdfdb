// Package tlunit extracts translatable text from application data files and
// writes translations back without disturbing anything else.
//
// Two kinds of content are supported. Script files (JavaScript, TypeScript)
// are scanned for string literals that read like prose; each one becomes a
// Unit whose identity is its byte range in the scanned source. Data documents
// (JSON, YAML) are flattened into path-keyed entries whose identity survives
// reloads. The engine never translates anything itself: callers offer each
// value to a translator and hand the results back.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/tlunit"
//	    "github.com/ZaguanLabs/tlunit/cache"
//	    "github.com/ZaguanLabs/tlunit/processor"
//	    "github.com/ZaguanLabs/tlunit/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    l := tlunit.NewLocalizer("zh_CN", p,
//	        tlunit.WithCache(cache.NewInMemoryCache(0)),
//	        tlunit.WithProcessor(processor.NewScriptProcessor()),
//	    )
//
//	    result, err := l.Process(context.Background(), `ui.notify("Hello there")`, tlunit.ContentJavaScript)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content)
//	}
package tlunit
