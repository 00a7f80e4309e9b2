package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/live-claims/internal/service"
)

const signalQueueName = "claim.signals"

// StartClaimConsumer connects to the broker, declares the durable
// claim.signals queue and consumes claim intents forever, feeding each
// one to the engine. It runs a reconnect loop with doubling backoff
// capped at 30s and does not return under normal operation; a
// processing fault nacks the delivery without requeue so a poison
// message cannot wedge the queue.
func StartClaimConsumer(url string, engine *service.Engine) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("claim-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, engine); err != nil {
            log.Printf("claim-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection, engine *service.Engine) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("claim-consumer: set QoS failed: %v", err)
    }

    _, err = ch.QueueDeclare(signalQueueName, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(signalQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleDelivery(engine, d.Body); err != nil {
            log.Printf("claim-consumer: handle delivery failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// handleDelivery decodes one claim intent and runs it through the
// engine. Precondition rejections are normal outcomes and ack exactly
// like accepted claims; only malformed payloads and processing faults
// come back as errors for the caller to nack.
func handleDelivery(engine *service.Engine, body []byte) error {
    var ev ClaimSignalEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ListingID == "" || ev.ParticipantID == 0 {
        return fmt.Errorf("incomplete signal: listing=%q participant=%d", ev.ListingID, ev.ParticipantID)
    }

    err := engine.HandleSignal(context.Background(), service.Signal{
        ListingID:     ev.ListingID,
        ParticipantID: ev.ParticipantID,
        ClaimantName:  ev.ClaimantName,
        Kind:          ev.Signal,
    })
    if err != nil && !service.IsRejection(err) {
        return err
    }
    return nil
}
