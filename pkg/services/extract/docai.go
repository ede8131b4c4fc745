package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/de-tools/soc-atlas/pkg/models/api"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
)

const DefaultDocAILocation = "us"

// Entity is a labeled span found by a Document AI processor. Entities of object
// fields carry one property per object key.
type Entity struct {
	Type        string
	MentionText string
	Properties  []Entity
}

// EntityProcessor runs an extraction processor over a document.
type EntityProcessor interface {
	Process(ctx context.Context, doc Document) ([]Entity, error)
}

// DocAI processes documents online with a custom extractor processor whose entity
// types are the record's wire field names.
type DocAI struct {
	client *documentai.DocumentProcessorClient
	name   string
}

func NewDocAI(ctx context.Context, project, location, processor string) (*DocAI, error) {
	if project == "" || processor == "" {
		return nil, errors.New("document ai project and processor are not configured")
	}
	if location == "" {
		location = DefaultDocAILocation
	}

	client, err := documentai.NewDocumentProcessorClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document ai client: %w", err)
	}

	return &DocAI{
		client: client,
		name:   fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processor),
	}, nil
}

func (d *DocAI) Process(ctx context.Context, doc Document) ([]Entity, error) {
	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: doc.Data, MimeType: doc.MIMEType},
		},
		FieldMask: &fieldmaskpb.FieldMask{Paths: []string{"text", "entities"}},
	})
	if err != nil {
		return nil, err
	}
	return entitiesFrom(resp.GetDocument().GetEntities()), nil
}

func (d *DocAI) Close() error {
	return d.client.Close()
}

func entitiesFrom(in []*documentaipb.Document_Entity) []Entity {
	if len(in) == 0 {
		return nil
	}
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, Entity{
			Type:        e.GetType(),
			MentionText: e.GetMentionText(),
			Properties:  entitiesFrom(e.GetProperties()),
		})
	}
	return out
}

// DocAIExtractor fills records from processor entities.
type DocAIExtractor struct {
	proc        EntityProcessor
	concurrency int
}

func NewDocAIExtractor(proc EntityProcessor, concurrency int) *DocAIExtractor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &DocAIExtractor{proc: proc, concurrency: concurrency}
}

func (e *DocAIExtractor) Run(ctx context.Context, src DocumentSource) ([]api.SOCReport, error) {
	return Run(ctx, src, e, e.concurrency)
}

// Extract maps the entities of doc onto a record. A document the processor fails
// on keeps only its file name. Only cancellation of ctx fails the call.
func (e *DocAIExtractor) Extract(ctx context.Context, doc Document) (api.SOCReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("document", doc.Name).Logger()

	entities, err := e.proc.Process(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return api.SOCReport{FileName: doc.Name}, ctx.Err()
		}
		logger.Error().Err(err).Msg("failed to process document")
		return api.SOCReport{FileName: doc.Name}, nil
	}

	report := recordFromEntities(logger.WithContext(ctx), doc.Name, entities)
	logger.Info().Int("entities", len(entities)).Msg("document extracted")
	return report, nil
}

// recordFromEntities builds a record named name. A text field takes its first
// non-empty mention, a list field collects every mention and an object field
// turns each entity's properties into one object. Unknown entity types are ignored.
func recordFromEntities(ctx context.Context, name string, entities []Entity) api.SOCReport {
	logger := zerolog.Ctx(ctx)

	values := map[string]any{}
	for _, e := range entities {
		kind, ok := api.KindOf(e.Type)
		if !ok || e.Type == "file_name" {
			logger.Debug().Str("entity", e.Type).Msg("ignoring entity")
			continue
		}

		switch kind {
		case api.KindText:
			if _, seen := values[e.Type]; !seen {
				if text := strings.TrimSpace(e.MentionText); text != "" {
					values[e.Type] = text
				}
			}
		case api.KindList:
			if text := strings.TrimSpace(e.MentionText); text != "" {
				list, _ := values[e.Type].([]string)
				values[e.Type] = append(list, text)
			}
		case api.KindObjects:
			obj := map[string]string{}
			for _, p := range e.Properties {
				if text := strings.TrimSpace(p.MentionText); text != "" {
					obj[p.Type] = text
				}
			}
			if len(obj) > 0 {
				objs, _ := values[e.Type].([]map[string]string)
				values[e.Type] = append(objs, obj)
			}
		}
	}

	report := api.SOCReport{FileName: name}
	for field, value := range values {
		raw, err := json.Marshal(value)
		if err == nil {
			err = report.SetField(field, raw)
		}
		if err != nil {
			logger.Warn().Err(err).Str("field", field).Msg("discarding entity value")
		}
	}
	return report
}
